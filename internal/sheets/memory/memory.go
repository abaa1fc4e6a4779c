package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pennywise/internal/sheets"
)

// Store is an in-process LedgerMirror for local runs and tests.
type Store struct {
	mu   sync.Mutex
	rows map[int64]sheets.LedgerRow
	seq  int
}

var _ sheets.LedgerMirror = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[int64]sheets.LedgerRow)}
}

// Append stores the row and returns a synthetic row reference. Appending
// the same transaction twice keeps one row.
func (s *Store) Append(_ context.Context, row sheets.LedgerRow) (string, error) {
	if row.TransactionID <= 0 {
		return "", fmt.Errorf("invalid transaction id %d", row.TransactionID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.rows[row.TransactionID] = row
	return fmt.Sprintf("mem:%d", s.seq), nil
}

func (s *Store) Remove(_ context.Context, transactionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, transactionID)
	return nil
}

// Rows returns the mirrored rows ordered by transaction id.
func (s *Store) Rows() []sheets.LedgerRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sheets.LedgerRow, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionID < out[j].TransactionID })
	return out
}
