package sheets

import (
	"context"

	"pennywise/internal/core"
)

// LedgerRow is one mirrored transaction.
type LedgerRow struct {
	TransactionID int64
	Username      string
	Date          string
	Description   string
	Amount        core.Money
	Category      string
	GoalID        *int64
	BudgetID      *int64
}

// Ports for outbound adapters.
type (
	// LedgerMirror keeps a spreadsheet copy of every user's ledger.
	LedgerMirror interface {
		// Append mirrors a transaction. Appending a transaction that is
		// already mirrored keeps a single row.
		Append(ctx context.Context, row LedgerRow) (rowRef string, err error)
		// Remove deletes the row of a transaction. Removing an unknown
		// transaction is not an error.
		Remove(ctx context.Context, transactionID int64) error
	}
)
