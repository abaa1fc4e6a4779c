package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"pennywise/internal/core"
)

const classifyInstruction = "You categorize personal finance transactions. " +
	"Answer with the single category that best fits the transaction description."

// Gemini implements Generator with the Google Generative AI API.
type Gemini struct {
	client *genai.Client
	model  string
}

var _ Generator = (*Gemini)(nil)

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// Classify constrains the answer to labels with an enum response schema.
func (g *Gemini) Classify(ctx context.Context, text string, labels []string) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0)
	m.SystemInstruction = genai.NewUserContent(genai.Text(classifyInstruction))
	m.ResponseMIMEType = "text/x.enum"
	m.ResponseSchema = &genai.Schema{Type: genai.TypeString, Enum: labels}

	out, err := g.generate(ctx, m, "Transaction description: "+text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0.4)
	return g.generate(ctx, m, prompt)
}

func (g *Gemini) generate(ctx context.Context, m *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", core.ErrExternalService, err)
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		break
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: empty response", core.ErrExternalService)
	}
	return b.String(), nil
}
