package memory

import (
	"context"
	"testing"

	"pennywise/internal/core"
	"pennywise/internal/sheets"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Append(ctx, sheets.LedgerRow{}); err == nil {
		t.Fatal("expected error for missing transaction id")
	}
	for _, id := range []int64{2, 1, 2} {
		if _, err := s.Append(ctx, sheets.LedgerRow{TransactionID: id, Amount: core.Cents(-100)}); err != nil {
			t.Fatal(err)
		}
	}
	rows := s.Rows()
	if len(rows) != 2 || rows[0].TransactionID != 1 {
		t.Fatalf("rows %+v", rows)
	}
	if err := s.Remove(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, 99); err != nil {
		t.Fatal(err)
	}
	if len(s.Rows()) != 1 {
		t.Fatalf("rows after remove %+v", s.Rows())
	}
}
