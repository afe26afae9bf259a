package geoapify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/anokye0712/ai-route-planner/core/errs"
	"github.com/anokye0712/ai-route-planner/internal/model"
)

// ErrNoRoute means the routing engine answered without any route features.
var ErrNoRoute = errors.New("no route features")

type routingResponse struct {
	Features []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// RouteGeometry fetches detailed road-following geometry for an ordered
// waypoint sequence. The returned geometry is passed through as raw GeoJSON
// (LineString or MultiLineString, the engine decides). Callers degrade to an
// empty geometry on error; this method only reports what happened.
func (c *Client) RouteGeometry(ctx context.Context, waypoints []model.LonLat, mode model.TravelMode) (json.RawMessage, error) {
	if len(waypoints) < 2 {
		return model.EmptyLineString(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, routingTimeout)
	defer cancel()

	endpoint := c.baseURL + "/v1/routing"
	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("waypoints", waypointsParam(waypoints))
		q.Set("mode", string(mode))
		q.Set("apiKey", c.apiKey)
		q.Set("details", "route_details")
		q.Set("format", "geojson")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.NewUpstreamError(errs.ServiceRouting, fmt.Errorf("fetching route geometry: %w", err))
	}
	defer resp.Body.Close() //nolint:errcheck

	var decoded routingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errs.NewUpstreamError(errs.ServiceRouting, fmt.Errorf("decoding routing response: %w", err))
	}
	if len(decoded.Features) == 0 || len(decoded.Features[0].Geometry) == 0 {
		return nil, ErrNoRoute
	}
	return decoded.Features[0].Geometry, nil
}

// waypointsParam renders the ordered waypoints in the routing API's
// "lonlat:lon,lat|lonlat:lon,lat" form.
func waypointsParam(waypoints []model.LonLat) string {
	parts := make([]string, len(waypoints))
	for i, wp := range waypoints {
		parts[i] = "lonlat:" + strconv.FormatFloat(wp.Lon(), 'f', -1, 64) +
			"," + strconv.FormatFloat(wp.Lat(), 'f', -1, 64)
	}
	return strings.Join(parts, "|")
}
