package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pennywise/internal/core"
)

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	var id int64
	err := q.queryRow(ctx, `
		INSERT INTO transactions
			(user_id, amount_cents, description, transaction_date, goal_id, budget_id, ai_category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		t.UserID, t.Amount.Cents, t.Description, t.Date.String(),
		nullableID(t.GoalID), nullableID(t.BudgetID), t.Category, formatTime(time.Now()),
	).Scan(&id)
	if err != nil {
		return 0, dbErr("insert transaction", err)
	}
	return id, nil
}

// ListTransactions returns the user's ledger, newest date first, with the
// linked goal name and budget category.
func (q *Queries) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := q.query(ctx, `
		SELECT t.id, t.user_id, t.amount_cents, t.description, t.transaction_date,
		       t.goal_id, t.budget_id, t.ai_category, t.created_at,
		       COALESCE(g.name, ''), COALESCE(b.category, '')
		FROM transactions t
		LEFT JOIN savings_goals g ON g.id = t.goal_id
		LEFT JOIN budgets b ON b.id = t.budget_id
		WHERE t.user_id = ?
		ORDER BY t.transaction_date DESC, t.id DESC`, userID)
	if err != nil {
		return nil, dbErr("list transactions", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		var (
			t        core.Transaction
			date     string
			goalID   sql.NullInt64
			budgetID sql.NullInt64
			created  dbTime
		)
		err := rows.Scan(&t.ID, &t.UserID, &t.Amount.Cents, &t.Description, &date,
			&goalID, &budgetID, &t.Category, &created, &t.GoalName, &t.BudgetCategory)
		if err != nil {
			return nil, dbErr("scan transaction", err)
		}
		if t.Date, err = core.ParseDate(date); err != nil {
			return nil, dbErr("scan transaction", err)
		}
		t.GoalID, t.BudgetID = idPtr(goalID), idPtr(budgetID)
		t.CreatedAt = created.Time
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("list transactions", err)
	}
	return txs, nil
}

// GetTransaction returns the transaction only if userID owns it.
func (q *Queries) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	var (
		t        core.Transaction
		date     string
		goalID   sql.NullInt64
		budgetID sql.NullInt64
		created  dbTime
	)
	err := q.queryRow(ctx, `
		SELECT id, user_id, amount_cents, description, transaction_date, goal_id, budget_id, ai_category, created_at
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&t.ID, &t.UserID, &t.Amount.Cents, &t.Description, &date, &goalID, &budgetID, &t.Category, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: transaction %d", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Transaction{}, dbErr("get transaction", err)
	}
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, dbErr("get transaction", err)
	}
	t.GoalID, t.BudgetID = idPtr(goalID), idPtr(budgetID)
	t.CreatedAt = created.Time
	return t, nil
}

func (q *Queries) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := q.exec(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return dbErr("delete transaction", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: transaction %d", core.ErrNotFound, id)
	}
	return nil
}

func (q *Queries) CountTransactions(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := q.queryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, dbErr("count transactions", err)
	}
	return n, nil
}
