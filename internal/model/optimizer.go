package model

// Optimizer request types. These mirror the domain entities but replace every
// address with an integer index into the resolved-location list. Optional
// fields are omitted entirely when empty: the optimizer treats an explicit
// empty time-window list as "never available", which is not what an absent
// list means.

// LonLat is a coordinate pair in GeoJSON order: longitude first.
type LonLat [2]float64

func (l LonLat) Lon() float64 { return l[0] }
func (l LonLat) Lat() float64 { return l[1] }

// ResolvedLocation is one geocoded entry in the optimizer's location list.
// Two addresses that geocode to the same coordinates share one entry.
type ResolvedLocation struct {
	ID         string         `json:"id"`
	Location   LonLat         `json:"location"`
	Name       string         `json:"name,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// OptimizerBreak is a typed break entry in an optimizer agent.
type OptimizerBreak struct {
	Duration    int          `json:"duration"`
	TimeWindows []TimeWindow `json:"time_windows,omitempty"`
}

// OptimizerAgent references its start and end by location index. Capacity
// vectors are positional: slot 0 is the delivery dimension, slot 1 the pickup
// dimension, uniformly across one request.
type OptimizerAgent struct {
	ID                 string           `json:"id"`
	StartLocationIndex int              `json:"start_location_index"`
	EndLocationIndex   int              `json:"end_location_index"`
	TimeWindows        []TimeWindow     `json:"time_windows,omitempty"`
	Breaks             []OptimizerBreak `json:"breaks,omitempty"`
	Capacities         []float64        `json:"capacities,omitempty"`
	Capabilities       []string         `json:"capabilities,omitempty"`
	MaxTravelTime      *int             `json:"max_travel_time,omitempty"`
	MaxDistance        *int             `json:"max_distance,omitempty"`
	MaxSpeed           *int             `json:"max_speed,omitempty"`
}

// OptimizerJob places a single stop at one location index. Demands follow the
// same slot convention as agent capacities.
type OptimizerJob struct {
	ID            string       `json:"id"`
	LocationIndex int          `json:"location_index"`
	Duration      int          `json:"duration"`
	TimeWindows   []TimeWindow `json:"time_windows,omitempty"`
	Demands       []float64    `json:"demands,omitempty"`
	Requirements  []string     `json:"requirements,omitempty"`
	Priority      int          `json:"priority,omitempty"`
}

// OptimizerShipmentLeg is the pickup or delivery half of a shipment.
type OptimizerShipmentLeg struct {
	LocationIndex int          `json:"location_index"`
	Duration      int          `json:"duration"`
	TimeWindows   []TimeWindow `json:"time_windows,omitempty"`
}

type OptimizerShipment struct {
	ID           string               `json:"id"`
	Pickup       OptimizerShipmentLeg `json:"pickup"`
	Delivery     OptimizerShipmentLeg `json:"delivery"`
	Demands      []float64            `json:"demands,omitempty"`
	Requirements []string             `json:"requirements,omitempty"`
	Priority     int                  `json:"priority,omitempty"`
}

// OptimizerOptions is the fixed option block sent with every submission.
type OptimizerOptions struct {
	Traffic string `json:"traffic,omitempty"`
	Units   string `json:"units,omitempty"`
}

// OptimizerRequest is the full route-optimization submission.
type OptimizerRequest struct {
	Mode      TravelMode          `json:"mode"`
	Locations []ResolvedLocation  `json:"locations"`
	Agents    []OptimizerAgent    `json:"agents"`
	Jobs      []OptimizerJob      `json:"jobs,omitempty"`
	Shipments []OptimizerShipment `json:"shipments,omitempty"`
	Options   *OptimizerOptions   `json:"options,omitempty"`
}
