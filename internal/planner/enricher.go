package planner

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/anokye0712/ai-route-planner/common/logger"
	"github.com/anokye0712/ai-route-planner/internal/model"
)

// Router fetches detailed road-following geometry for an ordered waypoint
// sequence. Implemented by the geoapify client.
type Router interface {
	RouteGeometry(ctx context.Context, waypoints []model.LonLat, mode model.TravelMode) (json.RawMessage, error)
}

// Enricher swaps each route feature's straight-line geometry for detailed
// geometry from the routing engine. Enrichment is cosmetic: any per-feature
// failure degrades that feature to an empty line and the plan continues.
type Enricher struct {
	router      Router
	maxInFlight int
}

func NewEnricher(router Router, maxInFlight int) *Enricher {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Enricher{router: router, maxInFlight: maxInFlight}
}

// Enrich rewrites feature geometries in place. Features are processed
// concurrently; each goroutine touches only its own feature.
func (e *Enricher) Enrich(ctx context.Context, plan *model.RoutePlan, mode model.TravelMode) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "planner.enricher"})

	var g errgroup.Group
	g.SetLimit(e.maxInFlight)
	for i := range plan.Features {
		feature := &plan.Features[i]
		g.Go(func() error {
			e.enrichFeature(ctx, feature, mode)
			return nil
		})
	}
	// Workers degrade instead of failing, so Wait only synchronizes.
	_ = g.Wait()
}

func (e *Enricher) enrichFeature(ctx context.Context, feature *model.RouteFeature, mode model.TravelMode) {
	waypoints, err := feature.Waypoints()
	if err != nil {
		slog.WarnContext(ctx, "feature waypoints unreadable, substituting empty geometry", "error", err)
		feature.Geometry = model.EmptyLineString()
		return
	}
	if len(waypoints) < 2 {
		feature.Geometry = model.EmptyLineString()
		return
	}

	geometry, err := e.router.RouteGeometry(ctx, waypoints, mode)
	if err != nil {
		slog.WarnContext(ctx, "detailed routing failed, substituting empty geometry",
			"waypoints", len(waypoints),
			"error", err)
		feature.Geometry = model.EmptyLineString()
		return
	}
	feature.Geometry = geometry
}
