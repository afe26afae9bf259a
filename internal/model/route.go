package model

import (
	"encoding/json"
	"fmt"
)

// RoutePlan is the optimizer's GeoJSON response: one feature per agent route
// plus whatever else the optimizer includes. Fields the pipeline does not
// interpret stay as raw JSON so the outbound response echoes them unchanged.
type RoutePlan struct {
	Type       string          `json:"type"`
	Features   []RouteFeature  `json:"features"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

// RouteFeature is one feature of the plan. Only the waypoint list inside
// properties is ever read; geometry is the only field ever rewritten.
type RouteFeature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

// Waypoint is one matched stop on an agent's route. Entries without a
// location are ignored during enrichment.
type Waypoint struct {
	Location *LonLat `json:"location"`
}

// Waypoints decodes the ordered stop sequence from the feature's properties.
// A feature without waypoints yields an empty slice, not an error.
func (f *RouteFeature) Waypoints() ([]LonLat, error) {
	if len(f.Properties) == 0 {
		return nil, nil
	}
	var props struct {
		Waypoints []Waypoint `json:"waypoints"`
	}
	if err := json.Unmarshal(f.Properties, &props); err != nil {
		return nil, fmt.Errorf("decoding feature waypoints: %w", err)
	}
	coords := make([]LonLat, 0, len(props.Waypoints))
	for _, wp := range props.Waypoints {
		if wp.Location == nil {
			continue
		}
		coords = append(coords, *wp.Location)
	}
	return coords, nil
}

// UnassignedCounts reports work the optimizer could not fit into any route.
// Nonzero counts are a completed-with-warnings outcome, never an error.
type UnassignedCounts struct {
	JobsCount   int `json:"jobs_count"`
	AgentsCount int `json:"agents_count"`
}

// Unassigned extracts the unassigned block from the top-level properties.
// Absent or unreadable properties count as fully assigned.
func (p *RoutePlan) Unassigned() UnassignedCounts {
	if len(p.Properties) == 0 {
		return UnassignedCounts{}
	}
	var props struct {
		Unassigned UnassignedCounts `json:"unassigned"`
	}
	if err := json.Unmarshal(p.Properties, &props); err != nil {
		return UnassignedCounts{}
	}
	return props.Unassigned
}

// EmptyLineString is the geometry placeholder used when detailed routing is
// impossible (fewer than two waypoints) or failed for one agent.
func EmptyLineString() json.RawMessage {
	return json.RawMessage(`{"type":"LineString","coordinates":[]}`)
}

// Skip reasons recorded when an entity is dropped during translation.
const (
	SkipReasonUngeocodable = "ungeocodable"
)

// SkippedEntity records one job or shipment dropped non-fatally.
type SkippedEntity struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// PlanWarnings accumulates every non-fatal degradation across the pipeline.
// It travels alongside a successful result and never turns into an error.
type PlanWarnings struct {
	UnresolvedAddresses []string         `json:"unresolved_addresses,omitempty"`
	Skipped             []SkippedEntity  `json:"skipped,omitempty"`
	Unassigned          UnassignedCounts `json:"unassigned"`
}

func (w *PlanWarnings) Empty() bool {
	return len(w.UnresolvedAddresses) == 0 &&
		len(w.Skipped) == 0 &&
		w.Unassigned.JobsCount == 0 &&
		w.Unassigned.AgentsCount == 0
}

// PlanOutcome is what one planning request produces: the enriched plan, the
// accumulated warnings, and the persisted run ID (zero when persistence is
// disabled).
type PlanOutcome struct {
	RunID    int64
	Plan     *RoutePlan
	Warnings PlanWarnings
}
