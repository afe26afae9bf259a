package geoapify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anokye0712/ai-route-planner/core/errs"
	"github.com/anokye0712/ai-route-planner/internal/model"
)

// Optimize submits the translated problem to the route-planner API and
// returns the optimized plan as a GeoJSON feature collection. Failures here
// abort the whole request; there is no per-item degradation for the
// optimizer itself.
func (c *Client) Optimize(ctx context.Context, req *model.OptimizerRequest) (*model.RoutePlan, error) {
	ctx, cancel := context.WithTimeout(ctx, optimizerTimeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling optimizer request: %w", err)
	}

	slog.DebugContext(ctx, "submitting optimization problem",
		"locations", len(req.Locations),
		"agents", len(req.Agents),
		"jobs", len(req.Jobs),
		"shipments", len(req.Shipments))

	endpoint := c.baseURL + "/v1/routeplanner?apiKey=" + c.apiKey
	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.NewUpstreamError(errs.ServiceOptimizer, fmt.Errorf("submitting optimizer request: %w", err))
	}
	defer resp.Body.Close() //nolint:errcheck

	var plan model.RoutePlan
	if err := json.NewDecoder(resp.Body).Decode(&plan); err != nil {
		return nil, errs.NewUpstreamError(errs.ServiceOptimizer, fmt.Errorf("decoding optimizer response: %w", err))
	}
	return &plan, nil
}
