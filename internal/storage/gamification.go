package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pennywise/internal/core"
)

// AwardAchievement inserts the badge unless the user already holds it. It
// reports whether a new row was written.
func (q *Queries) AwardAchievement(ctx context.Context, userID int64, badge core.Badge) (bool, error) {
	res, err := q.exec(ctx, `
		INSERT INTO achievements (user_id, name, description, icon, earned_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, name) DO NOTHING`,
		userID, badge.Name, badge.Description, badge.Icon, formatTime(time.Now()))
	if err != nil {
		return false, dbErr("award achievement", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbErr("award achievement", err)
	}
	return n > 0, nil
}

func (q *Queries) ListAchievements(ctx context.Context, userID int64) ([]core.Achievement, error) {
	rows, err := q.query(ctx, `
		SELECT id, user_id, name, description, icon, earned_at
		FROM achievements WHERE user_id = ?
		ORDER BY earned_at, id`, userID)
	if err != nil {
		return nil, dbErr("list achievements", err)
	}
	defer rows.Close()

	out := []core.Achievement{}
	for rows.Next() {
		var (
			a      core.Achievement
			earned dbTime
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Description, &a.Icon, &earned); err != nil {
			return nil, dbErr("scan achievement", err)
		}
		a.EarnedAt = earned.Time
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("list achievements", err)
	}
	return out, nil
}

// RecordLogin advances the login streak in one upsert: a login the day
// after the previous one increments it, any other gap (including a repeat
// login on the same day) sets it to 1.
func (q *Queries) RecordLogin(ctx context.Context, userID int64, today core.Date) (int, error) {
	var streak int
	err := q.queryRow(ctx, `
		INSERT INTO login_streaks (user_id, streak, last_login)
		VALUES (?, 1, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			streak = CASE WHEN login_streaks.last_login = ? THEN login_streaks.streak + 1 ELSE 1 END,
			last_login = excluded.last_login
		RETURNING streak`,
		userID, today.String(), today.AddDays(-1).String(),
	).Scan(&streak)
	if err != nil {
		return 0, dbErr("record login", err)
	}
	return streak, nil
}

// RecordBudgetCheck applies the monthly budget-streak rule at most once per
// calendar month. updated is false when this month was already checked.
func (q *Queries) RecordBudgetCheck(ctx context.Context, userID int64, today core.Date, withinLimits bool) (streak int, updated bool, err error) {
	within := 0
	if withinLimits {
		within = 1
	}
	err = q.queryRow(ctx, `
		INSERT INTO budget_streaks (user_id, streak, last_check)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			streak = CASE WHEN ? = 1 THEN budget_streaks.streak + 1 ELSE 0 END,
			last_check = excluded.last_check
		WHERE substr(budget_streaks.last_check, 1, 7) <> ?
		RETURNING streak`,
		userID, within, today.String(), within, today.MonthKey(),
	).Scan(&streak)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, dbErr("record budget check", err)
	}
	return streak, true, nil
}

func (q *Queries) GetStreaks(ctx context.Context, userID int64) (core.Streaks, error) {
	var s core.Streaks
	err := q.queryRow(ctx, `
		SELECT
			COALESCE((SELECT streak FROM login_streaks WHERE user_id = ?), 0),
			COALESCE((SELECT streak FROM budget_streaks WHERE user_id = ?), 0)`,
		userID, userID,
	).Scan(&s.Login, &s.Budget)
	if err != nil {
		return core.Streaks{}, dbErr("get streaks", err)
	}
	return s, nil
}
