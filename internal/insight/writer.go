package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pennywise/internal/core"
)

// Writer produces the report narrative and chat answers.
type Writer struct {
	gen     Generator
	timeout time.Duration
}

// NewWriter accepts a nil Generator; every call then returns its fallback.
func NewWriter(gen Generator, timeout time.Duration) *Writer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Writer{gen: gen, timeout: timeout}
}

// Narrate returns the model's summary of the report or ReportPlaceholder.
func (w *Writer) Narrate(ctx context.Context, r core.Report, currency string) string {
	out, err := w.generate(ctx, ReportPrompt(r, currency))
	if err != nil {
		slog.WarnContext(ctx, "Report insights unavailable", "component", "insight", "error", err)
		return ReportPlaceholder
	}
	return out
}

// Answer returns the model's reply to query about data or ChatFallback.
func (w *Writer) Answer(ctx context.Context, query string, data core.Report, currency string) string {
	out, err := w.generate(ctx, ChatPrompt(query, data, currency))
	if err != nil {
		slog.WarnContext(ctx, "Chat answer unavailable", "component", "insight", "error", err)
		return ChatFallback
	}
	return out
}

func (w *Writer) generate(ctx context.Context, prompt string) (string, error) {
	if w.gen == nil {
		return "", fmt.Errorf("%w: no model configured", core.ErrExternalService)
	}
	callCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	out, err := w.gen.Generate(callCtx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
