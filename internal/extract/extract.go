// Package extract turns a natural-language routing query into a structured
// plan by delegating entity extraction to an external language-model service.
//
// Two providers are supported: a Dify chat application whose answer text
// carries the plan JSON (optionally fenced in a markdown code block), and the
// OpenAI chat-completions API with a strict structured-output schema. Both
// return the same validated model.PlanRequest; callers select the provider
// through configuration and never see the difference.
package extract

import (
	"context"
	"fmt"

	"github.com/anokye0712/ai-route-planner/common/llm"
	"github.com/anokye0712/ai-route-planner/core/config"
	"github.com/anokye0712/ai-route-planner/internal/model"
)

// Extractor converts a natural-language routing query into a validated plan.
// The userID is forwarded to the provider for conversation tracking.
type Extractor interface {
	ExtractPlan(ctx context.Context, query, userID string) (*model.PlanRequest, error)
}

// New builds the extractor selected by cfg.Extractor.Provider.
func New(cfg *config.Config) (Extractor, error) {
	switch cfg.Extractor.Provider {
	case config.ExtractorProviderDify:
		return NewDify(DifyConfig{
			APIKey:  cfg.Dify.APIKey,
			BaseURL: cfg.Dify.BaseURL,
		})
	case config.ExtractorProviderOpenAI:
		client, err := llm.New(llm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("creating openai client: %w", err)
		}
		return NewOpenAI(client), nil
	default:
		return nil, fmt.Errorf("unknown extractor provider: %q", cfg.Extractor.Provider)
	}
}
