package storage

import (
	"context"

	"pennywise/internal/core"
)

// Totals returns income and expenses (as a positive amount) in the range.
func (q *Queries) Totals(ctx context.Context, userID int64, r core.ReportRange) (income, expenses core.Money, err error) {
	err = q.queryRow(ctx, `
		SELECT
			CAST(COALESCE(SUM(CASE WHEN amount_cents > 0 THEN amount_cents ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE(SUM(CASE WHEN amount_cents < 0 THEN -amount_cents ELSE 0 END), 0) AS BIGINT)
		FROM transactions
		WHERE user_id = ? AND transaction_date BETWEEN ? AND ?`,
		userID, r.Start.String(), r.End.String(),
	).Scan(&income.Cents, &expenses.Cents)
	if err != nil {
		return core.Money{}, core.Money{}, dbErr("report totals", err)
	}
	return income, expenses, nil
}

// CategoryTotals groups the range by category and direction, largest first.
func (q *Queries) CategoryTotals(ctx context.Context, userID int64, r core.ReportRange) ([]core.CategoryTotal, error) {
	rows, err := q.query(ctx, `
		SELECT ai_category,
		       CASE WHEN amount_cents > 0 THEN 'Income' ELSE 'Expense' END AS kind,
		       CAST(SUM(ABS(amount_cents)) AS BIGINT) AS total
		FROM transactions
		WHERE user_id = ? AND transaction_date BETWEEN ? AND ?
		GROUP BY ai_category, CASE WHEN amount_cents > 0 THEN 'Income' ELSE 'Expense' END
		ORDER BY total DESC, ai_category`,
		userID, r.Start.String(), r.End.String())
	if err != nil {
		return nil, dbErr("category totals", err)
	}
	defer rows.Close()

	out := []core.CategoryTotal{}
	for rows.Next() {
		var c core.CategoryTotal
		if err := rows.Scan(&c.Name, &c.Kind, &c.Amount.Cents); err != nil {
			return nil, dbErr("scan category total", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("category totals", err)
	}
	return out, nil
}

// GoalContributions lists every goal with the positive amounts linked to it
// inside the range.
func (q *Queries) GoalContributions(ctx context.Context, userID int64, r core.ReportRange) ([]core.GoalContribution, error) {
	rows, err := q.query(ctx, `
		SELECT g.id, g.name, g.current_amount_cents, g.target_amount_cents,
		       CAST(COALESCE(SUM(CASE
		           WHEN t.amount_cents > 0 AND t.transaction_date BETWEEN ? AND ? THEN t.amount_cents
		           ELSE 0 END), 0) AS BIGINT)
		FROM savings_goals g
		LEFT JOIN transactions t ON t.goal_id = g.id
		WHERE g.user_id = ?
		GROUP BY g.id, g.name, g.current_amount_cents, g.target_amount_cents
		ORDER BY g.id`,
		r.Start.String(), r.End.String(), userID)
	if err != nil {
		return nil, dbErr("goal contributions", err)
	}
	defer rows.Close()

	out := []core.GoalContribution{}
	for rows.Next() {
		var g core.GoalContribution
		if err := rows.Scan(&g.ID, &g.Name, &g.Current.Cents, &g.Target.Cents, &g.Contributed.Cents); err != nil {
			return nil, dbErr("scan goal contribution", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("goal contributions", err)
	}
	return out, nil
}
