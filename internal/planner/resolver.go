// Package planner implements the pipeline between an extracted plan and an
// enriched route: address resolution (geocode + dedup + dense indexing),
// translation into the optimizer's schema, and per-agent geometry enrichment.
// The stages are sequenced by the service layer; each is testable on its own.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/anokye0712/ai-route-planner/common/logger"
	"github.com/anokye0712/ai-route-planner/internal/geoapify"
	"github.com/anokye0712/ai-route-planner/internal/model"
)

// Resolution is the outcome of geocoding one plan's address set: a dense
// 0-based location list, the address→index mapping, and the addresses that
// could not be resolved. Addresses whose coordinates match exactly share one
// location entry and one index.
type Resolution struct {
	Index      map[string]int
	Locations  []model.ResolvedLocation
	Unresolved []string
}

// IndexOf looks up the location index assigned to an address.
func (r *Resolution) IndexOf(address string) (int, bool) {
	idx, ok := r.Index[address]
	return idx, ok
}

// Resolver geocodes address batches with bounded fan-out and a client-side
// rate limit, then assigns indices deterministically.
type Resolver struct {
	geocoder    geoapify.Geocoder
	limiter     *rate.Limiter
	maxInFlight int
}

// NewResolver bounds concurrent geocode calls at maxInFlight and the
// sustained request rate at ratePerSecond (0 disables the limiter).
func NewResolver(geocoder geoapify.Geocoder, maxInFlight, ratePerSecond int) *Resolver {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	limit := rate.Inf
	burst := 1
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
		burst = ratePerSecond
	}
	return &Resolver{
		geocoder:    geocoder,
		limiter:     rate.NewLimiter(limit, burst),
		maxInFlight: maxInFlight,
	}
}

// Resolve geocodes every distinct address concurrently, then assigns indices
// in lexicographic address order so the mapping is identical across runs no
// matter how the network calls interleave. A failed address is recorded as
// unresolved and the batch continues; only context cancellation aborts it.
func (r *Resolver) Resolve(ctx context.Context, addresses []string) (*Resolution, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "planner.resolver"})

	sorted := slices.Clone(addresses)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var mu sync.Mutex
	resolved := make(map[string]model.LonLat, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxInFlight)
	for _, addr := range sorted {
		g.Go(func() error {
			if err := r.limiter.Wait(gctx); err != nil {
				return err
			}
			loc, err := r.geocoder.Geocode(gctx, addr)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.WarnContext(gctx, "address left unresolved",
					"address", logger.Truncate(addr, 120),
					"error", err)
				return nil
			}
			mu.Lock()
			resolved[addr] = loc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolving addresses: %w", err)
	}

	res := &Resolution{Index: make(map[string]int, len(sorted))}
	byCoords := make(map[model.LonLat]int)
	for _, addr := range sorted {
		loc, ok := resolved[addr]
		if !ok {
			res.Unresolved = append(res.Unresolved, addr)
			continue
		}
		idx, ok := byCoords[loc]
		if !ok {
			idx = len(res.Locations)
			byCoords[loc] = idx
			res.Locations = append(res.Locations, model.ResolvedLocation{
				ID:         fmt.Sprintf("loc-%d", idx),
				Location:   loc,
				Name:       addr,
				Properties: map[string]any{"original_address": addr},
			})
		}
		res.Index[addr] = idx
	}

	slog.DebugContext(ctx, "address resolution complete",
		"addresses", len(sorted),
		"locations", len(res.Locations),
		"unresolved", len(res.Unresolved))

	return res, nil
}
