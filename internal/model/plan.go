package model

import (
	"encoding/json"
	"fmt"

	"github.com/anokye0712/ai-route-planner/core/errs"
)

type TravelMode string

const (
	TravelModeDrive   TravelMode = "drive"
	TravelModeTruck   TravelMode = "truck"
	TravelModeWalk    TravelMode = "walk"
	TravelModeBicycle TravelMode = "bicycle"
)

func (m TravelMode) Valid() bool {
	switch m {
	case TravelModeDrive, TravelModeTruck, TravelModeWalk, TravelModeBicycle:
		return true
	}
	return false
}

type AgentType string

const (
	AgentTypeVehicle    AgentType = "vehicle"
	AgentTypePerson     AgentType = "person"
	AgentTypeTechnician AgentType = "technician"
)

func (t AgentType) Valid() bool {
	switch t {
	case AgentTypeVehicle, AgentTypePerson, AgentTypeTechnician:
		return true
	}
	return false
}

// TimeWindow is one [start, end] interval in seconds from midnight.
// Multiple windows on an entity are alternatives, not a combined range.
type TimeWindow [2]int

func (w TimeWindow) Start() int { return w[0] }
func (w TimeWindow) End() int   { return w[1] }

func (w TimeWindow) Validate() error {
	if w[0] >= w[1] {
		return fmt.Errorf("time window start %d must be before end %d", w[0], w[1])
	}
	return nil
}

// AgentBreak is a scheduled break an agent must take within one of its windows.
type AgentBreak struct {
	Duration    int          `json:"duration" jsonschema:"required,description=Duration of the break in seconds"`
	TimeWindows []TimeWindow `json:"time_windows" jsonschema:"required,description=Time windows when the break can occur"`
}

// Agent is a vehicle or person available for route planning.
type Agent struct {
	ID               string       `json:"id" jsonschema:"required,description=Unique identifier for the agent"`
	Type             AgentType    `json:"type" jsonschema:"required,enum=vehicle,enum=person,enum=technician,description=Type of agent"`
	Description      string       `json:"description,omitempty" jsonschema:"description=Human-readable description of the agent"`
	Capabilities     []string     `json:"capabilities,omitempty" jsonschema:"description=Capability tags the agent satisfies (e.g. large_parcel_delivery)"`
	PickupCapacity   *int         `json:"pickup_capacity,omitempty" jsonschema:"description=Capacity for pickups"`
	DeliveryCapacity *int         `json:"delivery_capacity,omitempty" jsonschema:"description=Capacity for deliveries"`
	StartAddress     string       `json:"start_address" jsonschema:"required,description=Starting address for the agent"`
	EndAddress       string       `json:"end_address,omitempty" jsonschema:"description=Ending address. Defaults to the start address when absent"`
	TimeWindows      []TimeWindow `json:"time_windows,omitempty" jsonschema:"description=Working windows for the agent as [start_seconds,end_seconds] pairs"`
	Breaks           []AgentBreak `json:"breaks,omitempty" jsonschema:"description=Scheduled breaks for the agent"`
}

// Job is a single stop: a pickup and/or delivery amount at one address.
type Job struct {
	ID             string       `json:"id" jsonschema:"required,description=Unique identifier for the job"`
	Description    string       `json:"description,omitempty" jsonschema:"description=Human-readable description of the job"`
	Address        string       `json:"address" jsonschema:"required,description=Human-readable address for the job"`
	Duration       int          `json:"duration" jsonschema:"required,description=Expected duration of the stop in seconds"`
	PickupAmount   *int         `json:"pickup_amount,omitempty" jsonschema:"description=Amount to pick up"`
	DeliveryAmount *int         `json:"delivery_amount,omitempty" jsonschema:"description=Amount to deliver"`
	Requirements   []string     `json:"requirements,omitempty" jsonschema:"description=Capability tags required for this job"`
	TimeWindows    []TimeWindow `json:"time_windows,omitempty" jsonschema:"description=Time windows when the job can be performed"`
	Priority       int          `json:"priority,omitempty" jsonschema:"minimum=0,maximum=100,description=Priority of the job (0-100)"`
}

// ShipmentLeg is one end (pickup or delivery) of a shipment.
type ShipmentLeg struct {
	Address     string       `json:"address" jsonschema:"required,description=Human-readable address for the leg"`
	Duration    int          `json:"duration" jsonschema:"required,description=Expected duration of the stop in seconds"`
	TimeWindows []TimeWindow `json:"time_windows,omitempty" jsonschema:"description=Time windows when the leg can be performed"`
}

// Shipment links a pickup stop and a delivery stop that one agent must serve
// in order, pickup first.
type Shipment struct {
	ID           string      `json:"id" jsonschema:"required,description=Unique identifier for the shipment"`
	Description  string      `json:"description,omitempty" jsonschema:"description=Human-readable description of the shipment"`
	Pickup       ShipmentLeg `json:"pickup" jsonschema:"required,description=Pickup leg for the shipment"`
	Delivery     ShipmentLeg `json:"delivery" jsonschema:"required,description=Delivery leg for the shipment"`
	Amount       int         `json:"amount" jsonschema:"required,minimum=1,description=Amount of items in the shipment"`
	Requirements []string    `json:"requirements,omitempty" jsonschema:"description=Capability tags required for this shipment"`
	Priority     int         `json:"priority,omitempty" jsonschema:"minimum=0,maximum=100,description=Priority of the shipment (0-100)"`
}

// CommonLocation is a frequently used named point such as a depot.
type CommonLocation struct {
	ID      string `json:"id" jsonschema:"required,description=Unique identifier for the location"`
	Address string `json:"address" jsonschema:"required,description=Human-readable address for the location"`
}

// PlanRequest is the structured routing problem extracted from a
// natural-language query. It is the root aggregate every later stage works on.
type PlanRequest struct {
	Mode            TravelMode       `json:"mode" jsonschema:"required,enum=drive,enum=truck,enum=walk,enum=bicycle,description=Travel mode"`
	Agents          []Agent          `json:"agents" jsonschema:"required,description=Agents (vehicles/persons) available for routing"`
	Jobs            []Job            `json:"jobs,omitempty" jsonschema:"description=Individual jobs to be performed"`
	Shipments       []Shipment       `json:"shipments,omitempty" jsonschema:"description=Shipments with distinct pickup and delivery points"`
	CommonLocations []CommonLocation `json:"common_locations,omitempty" jsonschema:"description=Frequently used locations such as depots or hubs"`
}

// ParsePlanRequest decodes and validates extracted JSON in one step. No
// partially valid plan ever escapes: any violation returns a SchemaError.
func ParsePlanRequest(data []byte) (*PlanRequest, error) {
	var plan PlanRequest
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, errs.NewSchemaError("extracted plan is not valid JSON", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks structural invariants of the extracted plan.
func (p *PlanRequest) Validate() error {
	if !p.Mode.Valid() {
		return errs.NewSchemaError(fmt.Sprintf("unknown travel mode %q", p.Mode), nil)
	}
	if len(p.Agents) == 0 {
		return errs.NewSchemaError("at least one agent is required", nil)
	}
	if len(p.Jobs) == 0 && len(p.Shipments) == 0 {
		return errs.NewSchemaError("either jobs or shipments must be provided", nil)
	}

	for i := range p.Agents {
		if err := p.Agents[i].validate(); err != nil {
			return errs.NewSchemaError(fmt.Sprintf("agent %q", p.Agents[i].ID), err)
		}
	}
	for i := range p.Jobs {
		if err := p.Jobs[i].validate(); err != nil {
			return errs.NewSchemaError(fmt.Sprintf("job %q", p.Jobs[i].ID), err)
		}
	}
	for i := range p.Shipments {
		if err := p.Shipments[i].validate(); err != nil {
			return errs.NewSchemaError(fmt.Sprintf("shipment %q", p.Shipments[i].ID), err)
		}
	}
	for i := range p.CommonLocations {
		loc := p.CommonLocations[i]
		if loc.ID == "" || loc.Address == "" {
			return errs.NewSchemaError("common location requires id and address", nil)
		}
	}
	return nil
}

func (a *Agent) validate() error {
	if a.ID == "" {
		return fmt.Errorf("missing id")
	}
	if !a.Type.Valid() {
		return fmt.Errorf("unknown agent type %q", a.Type)
	}
	if a.StartAddress == "" {
		return fmt.Errorf("missing start address")
	}
	if err := validateWindows(a.TimeWindows); err != nil {
		return err
	}
	for _, b := range a.Breaks {
		if b.Duration <= 0 {
			return fmt.Errorf("break duration must be positive")
		}
		if err := validateWindows(b.TimeWindows); err != nil {
			return fmt.Errorf("break: %w", err)
		}
	}
	return nil
}

func (j *Job) validate() error {
	if j.ID == "" {
		return fmt.Errorf("missing id")
	}
	if j.Address == "" {
		return fmt.Errorf("missing address")
	}
	if j.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	if j.Priority < 0 || j.Priority > 100 {
		return fmt.Errorf("priority %d out of range [0,100]", j.Priority)
	}
	return validateWindows(j.TimeWindows)
}

func (s *Shipment) validate() error {
	if s.ID == "" {
		return fmt.Errorf("missing id")
	}
	if s.Amount < 1 {
		return fmt.Errorf("amount must be at least 1")
	}
	if s.Priority < 0 || s.Priority > 100 {
		return fmt.Errorf("priority %d out of range [0,100]", s.Priority)
	}
	if err := s.Pickup.validate(); err != nil {
		return fmt.Errorf("pickup leg: %w", err)
	}
	if err := s.Delivery.validate(); err != nil {
		return fmt.Errorf("delivery leg: %w", err)
	}
	return nil
}

func (l *ShipmentLeg) validate() error {
	if l.Address == "" {
		return fmt.Errorf("missing address")
	}
	if l.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return validateWindows(l.TimeWindows)
}

func validateWindows(windows []TimeWindow) error {
	for _, w := range windows {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Addresses returns every address reachable from the plan, deduplicated.
// Duplicate textual addresses across entities are geocoded once.
func (p *PlanRequest) Addresses() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(addr string) {
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}

	for _, a := range p.Agents {
		add(a.StartAddress)
		add(a.EndAddress)
	}
	for _, j := range p.Jobs {
		add(j.Address)
	}
	for _, s := range p.Shipments {
		add(s.Pickup.Address)
		add(s.Delivery.Address)
	}
	for _, l := range p.CommonLocations {
		add(l.Address)
	}
	return out
}
