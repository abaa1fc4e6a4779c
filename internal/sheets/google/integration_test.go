//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"pennywise/internal/core"
	ports "pennywise/internal/sheets"
)

// Integration tests require a real spreadsheet and service account.
// Run with: go test -tags=integration ./internal/sheets/google

func newIntegrationClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	credsJSON := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")
	credsFile := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
	if credsJSON == "" && credsFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	sheet := os.Getenv("GOOGLE_SHEET_NAME")
	if sheet == "" {
		sheet = "Ledger"
	}
	client, err := New(context.Background(), Options{
		SpreadsheetID:   spreadsheetID,
		SheetName:       sheet,
		CredentialsJSON: credsJSON,
		CredentialsFile: credsFile,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestIntegration_LedgerMirrorFlow(t *testing.T) {
	client := newIntegrationClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.EnsureHeader(ctx); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}

	id := time.Now().UnixNano()
	ref, err := client.Append(ctx, ports.LedgerRow{
		TransactionID: id,
		Username:      "integration",
		Date:          core.Today().String(),
		Description:   "integration test row",
		Amount:        core.Cents(-123),
		Category:      core.CategoryOther,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	t.Logf("Appended row at %s", ref)

	if err := client.Remove(ctx, id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	// A second remove finds nothing and must not fail.
	if err := client.Remove(ctx, id); err != nil {
		t.Fatalf("Remove of a missing row: %v", err)
	}
}

func TestIntegration_ContextCancellation(t *testing.T) {
	client := newIntegrationClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Append(ctx, ports.LedgerRow{TransactionID: 1, Date: "2024-01-01"}); err == nil {
		t.Error("Expected context cancellation error")
	}
}
