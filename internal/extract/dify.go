package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anokye0712/ai-route-planner/common/retry"
	"github.com/anokye0712/ai-route-planner/core/errs"
	"github.com/anokye0712/ai-route-planner/internal/model"
)

const (
	defaultDifyBaseURL = "https://api.dify.ai/v1"
	difyTimeout        = 60 * time.Second
)

// DifyConfig configures the Dify chat-messages extractor. HTTPClient and
// Retry are optional; when nil the extractor uses a 60s-timeout client and
// the default backoff schedule.
type DifyConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Retry      *retry.Policy
}

type difyExtractor struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      retry.Policy
}

// NewDify creates an extractor backed by a Dify chat application. The
// application is expected to answer with the plan JSON, optionally inside a
// markdown code fence.
func NewDify(cfg DifyConfig) (Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("dify API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultDifyBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: difyTimeout}
	}

	policy := retry.Default(difyRetryable)
	if cfg.Retry != nil {
		policy = *cfg.Retry
		policy.Retryable = difyRetryable
	}

	return &difyExtractor{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		retry:      policy,
	}, nil
}

// difyRetryable treats every upstream failure as transient. Dify errors are
// wrapped before they leave an attempt, so anything else (schema violations,
// context errors) stops the loop.
func difyRetryable(err error) bool {
	_, ok := errs.IsUpstream(err)
	return ok
}

type difyChatRequest struct {
	Inputs         map[string]any `json:"inputs"`
	Query          string         `json:"query"`
	ResponseMode   string         `json:"response_mode"`
	User           string         `json:"user"`
	ConversationID *string        `json:"conversation_id"`
}

type difyChatResponse struct {
	Answer string `json:"answer"`
}

func (d *difyExtractor) ExtractPlan(ctx context.Context, query, userID string) (*model.PlanRequest, error) {
	body, err := json.Marshal(difyChatRequest{
		Inputs:       map[string]any{},
		Query:        query,
		ResponseMode: "blocking",
		User:         userID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	var answer string
	err = d.retry.Do(ctx, func(ctx context.Context) error {
		a, err := d.chat(ctx, body)
		if err != nil {
			return err
		}
		answer = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "extraction answer received",
		"provider", "dify",
		"answer_len", len(answer))

	plan, err := model.ParsePlanRequest([]byte(SanitizeAnswer(answer)))
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// chat performs one chat-messages exchange and returns the answer text.
// Every failure is wrapped as an upstream error so the retry policy can
// distinguish it from the schema violations raised after parsing.
func (d *difyExtractor) chat(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/chat-messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errs.NewUpstreamError(errs.ServiceExtractor, fmt.Errorf("calling dify: %w", err))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", errs.NewUpstreamError(errs.ServiceExtractor,
			fmt.Errorf("dify returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var chatResp difyChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", errs.NewUpstreamError(errs.ServiceExtractor, fmt.Errorf("decoding dify response: %w", err))
	}
	if chatResp.Answer == "" {
		return "", errs.NewUpstreamError(errs.ServiceExtractor, fmt.Errorf("dify response missing answer field"))
	}
	return chatResp.Answer, nil
}
