// Package worker mirrors committed ledger events into the spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"pennywise/internal/amqp"
	"pennywise/internal/core"
	"pennywise/internal/sheets"
)

// LedgerWorker applies transaction events to a LedgerMirror.
type LedgerWorker struct {
	mirror sheets.LedgerMirror
}

func NewLedgerWorker(mirror sheets.LedgerMirror) *LedgerWorker {
	return &LedgerWorker{mirror: mirror}
}

// HandleEvent is the consumer callback. A returned error requeues the
// message; events that can never succeed are logged and acknowledged.
func (w *LedgerWorker) HandleEvent(ctx context.Context, e *amqp.Event) error {
	switch e.Type {
	case amqp.TransactionCreated, amqp.TransactionDeleted:
	default:
		slog.DebugContext(ctx, "Ignoring event", "component", "worker", "type", e.Type, "message_id", e.MessageID)
		return nil
	}
	if e.Transaction == nil || e.Transaction.ID <= 0 {
		slog.ErrorContext(ctx, "Dropping event without transaction",
			"component", "worker", "type", e.Type, "message_id", e.MessageID)
		return nil
	}

	if e.Type == amqp.TransactionDeleted {
		if err := w.mirror.Remove(ctx, e.Transaction.ID); err != nil {
			return fmt.Errorf("remove transaction %d: %w", e.Transaction.ID, err)
		}
		slog.InfoContext(ctx, "Removed transaction from ledger sheet",
			"component", "worker", "transaction_id", e.Transaction.ID, "message_id", e.MessageID)
		return nil
	}

	row, err := toRow(e)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping malformed transaction event",
			"component", "worker", "message_id", e.MessageID, "error", err)
		return nil
	}
	ref, err := w.mirror.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("append transaction %d: %w", row.TransactionID, err)
	}
	slog.InfoContext(ctx, "Mirrored transaction to ledger sheet",
		"component", "worker",
		"transaction_id", row.TransactionID,
		"sheets_ref", ref,
		"message_id", e.MessageID)
	return nil
}

func toRow(e *amqp.Event) (sheets.LedgerRow, error) {
	t := e.Transaction
	amount, err := core.ParseMoney(t.Amount)
	if err != nil {
		return sheets.LedgerRow{}, err
	}
	return sheets.LedgerRow{
		TransactionID: t.ID,
		Username:      e.Username,
		Date:          t.Date,
		Description:   t.Description,
		Amount:        amount,
		Category:      t.Category,
		GoalID:        t.GoalID,
		BudgetID:      t.BudgetID,
	}, nil
}
