package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pennywise/internal/core"
)

const goalColumns = `id, user_id, name, target_amount_cents, current_amount_cents, deadline, created_at`

func scanGoal(row interface{ Scan(...any) error }) (core.SavingsGoal, error) {
	var (
		g        core.SavingsGoal
		deadline sql.NullString
		created  dbTime
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Target.Cents, &g.Current.Cents, &deadline, &created); err != nil {
		return core.SavingsGoal{}, err
	}
	if deadline.Valid && deadline.String != "" {
		d, err := core.ParseDate(deadline.String)
		if err != nil {
			return core.SavingsGoal{}, err
		}
		g.Deadline = &d
	}
	g.CreatedAt = created.Time
	return g, nil
}

func (q *Queries) CreateGoal(ctx context.Context, g core.SavingsGoal) (int64, error) {
	var deadline sql.NullString
	if g.Deadline != nil {
		deadline = sql.NullString{String: g.Deadline.String(), Valid: true}
	}
	var id int64
	err := q.queryRow(ctx, `
		INSERT INTO savings_goals (user_id, name, target_amount_cents, current_amount_cents, deadline, created_at)
		VALUES (?, ?, ?, 0, ?, ?)
		RETURNING id`,
		g.UserID, g.Name, g.Target.Cents, deadline, formatTime(time.Now()),
	).Scan(&id)
	if err != nil {
		return 0, dbErr("insert goal", err)
	}
	return id, nil
}

func (q *Queries) ListGoals(ctx context.Context, userID int64) ([]core.SavingsGoal, error) {
	rows, err := q.query(ctx,
		`SELECT `+goalColumns+` FROM savings_goals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, dbErr("list goals", err)
	}
	defer rows.Close()

	goals := []core.SavingsGoal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, dbErr("scan goal", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("list goals", err)
	}
	return goals, nil
}

// GetGoal returns the goal only if userID owns it.
func (q *Queries) GetGoal(ctx context.Context, userID, goalID int64) (core.SavingsGoal, error) {
	g, err := scanGoal(q.queryRow(ctx,
		`SELECT `+goalColumns+` FROM savings_goals WHERE id = ? AND user_id = ?`, goalID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, fmt.Errorf("%w: goal %d", core.ErrNotFound, goalID)
	}
	if err != nil {
		return core.SavingsGoal{}, dbErr("get goal", err)
	}
	return g, nil
}

// GoalProgress is the outcome of an atomic progress update.
type GoalProgress struct {
	Name   string
	Before core.Money
	After  core.Money
	Target core.Money
}

// AddGoalProgress increments the goal in a single statement and reports the
// amounts on both sides of the update.
func (q *Queries) AddGoalProgress(ctx context.Context, userID, goalID int64, amount core.Money) (GoalProgress, error) {
	var p GoalProgress
	err := q.queryRow(ctx, `
		UPDATE savings_goals
		SET current_amount_cents = current_amount_cents + ?
		WHERE id = ? AND user_id = ?
		RETURNING name, current_amount_cents, target_amount_cents`,
		amount.Cents, goalID, userID,
	).Scan(&p.Name, &p.After.Cents, &p.Target.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return GoalProgress{}, fmt.Errorf("%w: goal %d", core.ErrInvalidReference, goalID)
	}
	if err != nil {
		return GoalProgress{}, dbErr("add goal progress", err)
	}
	p.Before = p.After.Sub(amount)
	return p, nil
}

// SubtractGoalProgress decrements the goal, never below zero.
func (q *Queries) SubtractGoalProgress(ctx context.Context, userID, goalID int64, amount core.Money) error {
	_, err := q.exec(ctx, `
		UPDATE savings_goals
		SET current_amount_cents = CASE
			WHEN current_amount_cents >= ? THEN current_amount_cents - ?
			ELSE 0
		END
		WHERE id = ? AND user_id = ?`,
		amount.Cents, amount.Cents, goalID, userID)
	if err != nil {
		return dbErr("subtract goal progress", err)
	}
	return nil
}
