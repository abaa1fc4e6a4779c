package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pennywise/internal/core"
)

// CreateBudget stores b. A zero CreatedAt is stamped with the current time.
func (q *Queries) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	var id int64
	err := q.queryRow(ctx, `
		INSERT INTO budgets (user_id, category, limit_amount_cents, period, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		b.UserID, b.Category, b.Limit.Cents, string(b.Period), formatTime(b.CreatedAt),
	).Scan(&id)
	if err != nil {
		return 0, dbErr("insert budget", err)
	}
	return id, nil
}

// ListBudgets returns the user's budgets with Spent derived from every
// linked expense.
func (q *Queries) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := q.query(ctx, `
		SELECT b.id, b.user_id, b.category, b.limit_amount_cents, b.period, b.created_at,
		       CAST(COALESCE(SUM(CASE WHEN t.amount_cents < 0 THEN -t.amount_cents ELSE 0 END), 0) AS BIGINT)
		FROM budgets b
		LEFT JOIN transactions t ON t.budget_id = b.id
		WHERE b.user_id = ?
		GROUP BY b.id, b.user_id, b.category, b.limit_amount_cents, b.period, b.created_at
		ORDER BY b.id`, userID)
	if err != nil {
		return nil, dbErr("list budgets", err)
	}
	defer rows.Close()

	budgets := []core.Budget{}
	for rows.Next() {
		var (
			b       core.Budget
			period  string
			created dbTime
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit.Cents, &period, &created, &b.Spent.Cents); err != nil {
			return nil, dbErr("scan budget", err)
		}
		b.Period = core.Period(period)
		b.CreatedAt = created.Time
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("list budgets", err)
	}
	return budgets, nil
}

// GetBudget returns the budget only if userID owns it. Spent is left zero.
func (q *Queries) GetBudget(ctx context.Context, userID, budgetID int64) (core.Budget, error) {
	var (
		b       core.Budget
		period  string
		created dbTime
	)
	err := q.queryRow(ctx, `
		SELECT id, user_id, category, limit_amount_cents, period, created_at
		FROM budgets WHERE id = ? AND user_id = ?`, budgetID, userID,
	).Scan(&b.ID, &b.UserID, &b.Category, &b.Limit.Cents, &period, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("%w: budget %d", core.ErrNotFound, budgetID)
	}
	if err != nil {
		return core.Budget{}, dbErr("get budget", err)
	}
	b.Period = core.Period(period)
	b.CreatedAt = created.Time
	return b, nil
}

// BudgetSpent sums the absolute value of every expense linked to the budget.
func (q *Queries) BudgetSpent(ctx context.Context, budgetID int64) (core.Money, error) {
	var spent core.Money
	err := q.queryRow(ctx, `
		SELECT CAST(COALESCE(SUM(-amount_cents), 0) AS BIGINT)
		FROM transactions
		WHERE budget_id = ? AND amount_cents < 0`, budgetID,
	).Scan(&spent.Cents)
	if err != nil {
		return core.Money{}, dbErr("budget spent", err)
	}
	return spent, nil
}

// BudgetUsageBetween reports each budget's spend restricted to the range.
func (q *Queries) BudgetUsageBetween(ctx context.Context, userID int64, r core.ReportRange) ([]core.BudgetUsage, error) {
	return q.budgetUsage(ctx, userID, r, "")
}

// BudgetUsageExisting is BudgetUsageBetween limited to budgets created on or
// before the range's last day.
func (q *Queries) BudgetUsageExisting(ctx context.Context, userID int64, r core.ReportRange) ([]core.BudgetUsage, error) {
	return q.budgetUsage(ctx, userID, r, formatTime(r.End.AddDays(1).Time))
}

// budgetUsage sums spend inside r. A non-empty createdBefore drops budgets
// created at or after that timestamp.
func (q *Queries) budgetUsage(ctx context.Context, userID int64, r core.ReportRange, createdBefore string) ([]core.BudgetUsage, error) {
	rows, err := q.query(ctx, `
		SELECT b.id, b.category, b.period, b.limit_amount_cents,
		       CAST(COALESCE(SUM(CASE
		           WHEN t.amount_cents < 0 AND t.transaction_date BETWEEN ? AND ? THEN -t.amount_cents
		           ELSE 0 END), 0) AS BIGINT)
		FROM budgets b
		LEFT JOIN transactions t ON t.budget_id = b.id
		WHERE b.user_id = ? AND (? = '' OR b.created_at < ?)
		GROUP BY b.id, b.category, b.period, b.limit_amount_cents
		ORDER BY b.id`, r.Start.String(), r.End.String(), userID, createdBefore, createdBefore)
	if err != nil {
		return nil, dbErr("budget usage", err)
	}
	defer rows.Close()

	usage := []core.BudgetUsage{}
	for rows.Next() {
		var (
			u      core.BudgetUsage
			period string
		)
		if err := rows.Scan(&u.ID, &u.Category, &period, &u.Limit.Cents, &u.Spent.Cents); err != nil {
			return nil, dbErr("scan budget usage", err)
		}
		u.Period = core.Period(period)
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("budget usage", err)
	}
	return usage, nil
}
