package geoapify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/anokye0712/ai-route-planner/core/errs"
	"github.com/anokye0712/ai-route-planner/internal/model"
)

// ErrNoResults means the geocoder answered but found nothing for the address.
// Callers treat it like any other per-address failure: the address stays
// unresolved and the batch continues.
var ErrNoResults = errors.New("no geocoding results")

type geocodeResponse struct {
	Features []struct {
		Properties struct {
			Lon *float64 `json:"lon"`
			Lat *float64 `json:"lat"`
		} `json:"properties"`
	} `json:"features"`
}

// Geocode resolves one address to a coordinate pair using forward geocoding.
func (c *Client) Geocode(ctx context.Context, address string) (model.LonLat, error) {
	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	endpoint := c.baseURL + "/v1/geocode/search"
	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		q.Set("limit", "1")
		q.Set("apiKey", c.apiKey)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return model.LonLat{}, err
		}
		return model.LonLat{}, errs.NewUpstreamError(errs.ServiceGeocoder, fmt.Errorf("geocoding %q: %w", address, err))
	}
	defer resp.Body.Close() //nolint:errcheck

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return model.LonLat{}, errs.NewUpstreamError(errs.ServiceGeocoder, fmt.Errorf("decoding geocode response: %w", err))
	}

	if len(decoded.Features) == 0 {
		return model.LonLat{}, fmt.Errorf("geocoding %q: %w", address, ErrNoResults)
	}
	props := decoded.Features[0].Properties
	if props.Lon == nil || props.Lat == nil {
		return model.LonLat{}, errs.NewUpstreamError(errs.ServiceGeocoder,
			fmt.Errorf("geocode result for %q missing coordinates", address))
	}

	return model.LonLat{*props.Lon, *props.Lat}, nil
}
