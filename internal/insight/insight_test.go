package insight

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pennywise/internal/core"
)

type fakeGenerator struct {
	label   string
	text    string
	err     error
	delay   time.Duration
	calls   atomic.Int32
	mu      sync.Mutex
	prompts []string
}

func (f *fakeGenerator) Classify(ctx context.Context, _ string, _ []string) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.label, f.err
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func TestCategorizerUsesModelAndCaches(t *testing.T) {
	gen := &fakeGenerator{label: "entertainment"}
	c := NewCategorizer(gen, CategorizerOptions{Timeout: time.Second})

	got, src := c.Categorize(context.Background(), "Cinema night")
	if got != core.CategoryEntertainment || src != SourceModel {
		t.Fatalf("got %q from %s", got, src)
	}
	got, src = c.Categorize(context.Background(), "  cinema   NIGHT ")
	if got != core.CategoryEntertainment || src != SourceCache {
		t.Fatalf("second lookup: %q from %s", got, src)
	}
	if n := gen.calls.Load(); n != 1 {
		t.Fatalf("model called %d times", n)
	}
}

func TestCategorizerFallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
	}{
		{"no model", nil},
		{"model error", &fakeGenerator{err: errors.New("quota exceeded")}},
		{"label outside set", &fakeGenerator{label: "Groceries"}},
		{"timeout", &fakeGenerator{label: "Housing", delay: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCategorizer(tt.gen, CategorizerOptions{Timeout: 20 * time.Millisecond})
			got, src := c.Categorize(context.Background(), "grocery run")
			if got != core.CategoryFood || src != SourceKeywords {
				t.Fatalf("got %q from %s", got, src)
			}
		})
	}
}

func TestCategorizerSharesConcurrentCalls(t *testing.T) {
	gen := &fakeGenerator{label: "Food", delay: 50 * time.Millisecond}
	c := NewCategorizer(gen, CategorizerOptions{Timeout: time.Second})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, _ := c.Categorize(context.Background(), "pizza"); got != core.CategoryFood {
				t.Errorf("got %q", got)
			}
		}()
	}
	wg.Wait()
	if n := gen.calls.Load(); n != 1 {
		t.Fatalf("model called %d times, want 1", n)
	}
}

func sampleReport() core.Report {
	return core.Report{
		Summary: core.ReportSummary{
			TotalIncome:   core.Cents(300000),
			TotalExpenses: core.Cents(120000),
			NetBalance:    core.Cents(180000),
		},
		Categories: []core.CategoryTotal{{Name: "Housing", Amount: core.Cents(100000), Kind: core.KindExpense}},
		Budgets:    []core.BudgetUsage{{Category: "Food", Spent: core.Cents(9000), Limit: core.Cents(10000)}},
		Goals:      []core.GoalContribution{{Name: "Trip", Current: core.Cents(5000), Target: core.Cents(20000)}},
	}
}

func TestWriter(t *testing.T) {
	gen := &fakeGenerator{text: "  You saved a lot.  "}
	w := NewWriter(gen, time.Second)

	if got := w.Narrate(context.Background(), sampleReport(), "USD"); got != "You saved a lot." {
		t.Fatalf("narrate: %q", got)
	}
	if got := w.Answer(context.Background(), "Can I afford a trip?", sampleReport(), "USD"); got != "You saved a lot." {
		t.Fatalf("answer: %q", got)
	}
	if len(gen.prompts) != 2 || !strings.Contains(gen.prompts[1], "Question: Can I afford a trip?") {
		t.Fatalf("unexpected prompts %q", gen.prompts)
	}
	if !strings.Contains(gen.prompts[0], "Food: spent 90.00 of 100.00 (90%)") {
		t.Fatalf("report prompt lacks budget line: %s", gen.prompts[0])
	}

	failing := NewWriter(&fakeGenerator{err: errors.New("down")}, time.Second)
	if got := failing.Narrate(context.Background(), sampleReport(), "USD"); got != ReportPlaceholder {
		t.Fatalf("narrate fallback: %q", got)
	}
	if got := NewWriter(nil, 0).Answer(context.Background(), "hi", core.Report{}, "USD"); got != ChatFallback {
		t.Fatalf("answer fallback: %q", got)
	}
}
