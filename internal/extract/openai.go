package extract

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/anokye0712/ai-route-planner/common/llm"
	"github.com/anokye0712/ai-route-planner/common/retry"
	"github.com/anokye0712/ai-route-planner/core/errs"
	"github.com/anokye0712/ai-route-planner/internal/model"
)

// planSchema is generated once; the reflected schema is immutable.
var planSchema = llm.GenerateSchema[model.PlanRequest]()

type openaiExtractor struct {
	client llm.Client
	retry  retry.Policy
}

// NewOpenAI creates an extractor that asks the OpenAI chat-completions API
// for a plan conforming to the PlanRequest schema via structured output.
func NewOpenAI(client llm.Client) Extractor {
	return &openaiExtractor{
		client: client,
		retry:  retry.Default(nil),
	}
}

func (o *openaiExtractor) ExtractPlan(ctx context.Context, query, userID string) (*model.PlanRequest, error) {
	req := llm.Request{
		SystemPrompt: extractionSystemPrompt,
		UserPrompt:   query,
		SchemaName:   "plan_request",
		Schema:       planSchema,
		MaxTokens:    4000,
		Temperature:  llm.Temp(0),
	}

	policy := o.retry
	policy.Retryable = func(err error) bool {
		return llm.IsRetryable(ctx, err)
	}

	var raw json.RawMessage
	var usage *llm.Usage
	err := policy.Do(ctx, func(ctx context.Context) error {
		var err error
		usage, err = o.client.Chat(ctx, req, &raw)
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errs.NewUpstreamError(errs.ServiceExtractor, err)
	}

	slog.DebugContext(ctx, "extraction answer received",
		"provider", "openai",
		"model", o.client.Model(),
		"user_id", userID,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens)

	plan, err := model.ParsePlanRequest(raw)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

const extractionSystemPrompt = `You are a route-planning extraction engine. Convert the user's natural-language routing request into the structured plan schema. Output only data stated or directly implied by the request.

Rules:
- Express every time as seconds from midnight of the planning day (8 AM = 28800, 5 PM = 61200). Durations are in seconds.
- Time windows are [start, end] pairs with start strictly before end.
- mode is one of: drive, truck, walk, bicycle. Default to drive when the request does not state one.
- Copy addresses verbatim. Never invent, complete, or abbreviate an address.
- Quantities an agent can carry become pickup_capacity / delivery_capacity. Quantities to move become pickup_amount / delivery_amount on jobs and amount on shipments.
- Skills or equipment an agent has go in capabilities; what a job or shipment needs goes in requirements.
- priority ranges 0 (lowest) to 100 (highest); omit it when the request implies no urgency.
- A shipment has a pickup leg and a delivery leg, each with its own address, duration, and time windows.
- Give every agent, job, and shipment a short stable id derived from its name ("agent-alpha", "job-1").`
