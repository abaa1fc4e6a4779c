// Package insight derives categories, report narratives and chat answers
// from an external text-generation model. Every call is bounded by a
// timeout and degrades to a deterministic fallback.
package insight

import "context"

// Generator is the port to the external model.
type Generator interface {
	// Classify returns exactly one of labels for text.
	Classify(ctx context.Context, text string, labels []string) (string, error)
	// Generate returns free text for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	// ReportPlaceholder replaces the narrative when the model is unavailable.
	ReportPlaceholder = "AI insights are unavailable right now. Your totals, categories, goals and budgets above are up to date."
	// ChatFallback answers the user when the model is unavailable.
	ChatFallback = "Sorry, I couldn't process your question right now. Please try again later."
)
