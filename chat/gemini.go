package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"github.com/ejjays/assets-management/models"
)

var ErrEmptyCompletion = errors.New("model returned no text")

// GeminiAdvisor sends the rendered prompt to the Generative Language API.
type GeminiAdvisor struct {
	svc   *generativelanguage.Service
	model string
	now   func() time.Time
}

// NewGeminiAdvisor builds an advisor for the given model (e.g. "gemini-1.5-flash").
// Extra client options are appended after the API key.
func NewGeminiAdvisor(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*GeminiAdvisor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key not configured")
	}
	svc, err := generativelanguage.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create generative language client: %w", err)
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return &GeminiAdvisor{svc: svc, model: model, now: time.Now}, nil
}

func (g *GeminiAdvisor) Advise(ctx context.Context, message string, assets []models.Asset) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: BuildPrompt(message, assets, g.now())}},
		}},
	}

	resp, err := g.svc.Models.GenerateContent(g.model, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var b strings.Builder
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil {
				b.WriteString(p.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return b.String(), nil
}
