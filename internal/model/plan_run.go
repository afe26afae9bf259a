package model

import "time"

type PlanRunStatus string

const (
	PlanRunStatusCompleted    PlanRunStatus = "completed"
	PlanRunStatusWithWarnings PlanRunStatus = "completed_with_warnings"
	PlanRunStatusFailed       PlanRunStatus = "failed"
)

// PlanRun is the persisted record of one planning request.
type PlanRun struct {
	ID               int64         `json:"id,string"`
	UserID           string        `json:"user_id"`
	Query            string        `json:"query"`
	Status           PlanRunStatus `json:"status"`
	Mode             string        `json:"mode,omitempty"`
	LocationCount    int32         `json:"location_count"`
	AgentCount       int32         `json:"agent_count"`
	JobCount         int32         `json:"job_count"`
	ShipmentCount    int32         `json:"shipment_count"`
	SkippedCount     int32         `json:"skipped_count"`
	UnassignedJobs   int32         `json:"unassigned_jobs"`
	UnassignedAgents int32         `json:"unassigned_agents"`
	Error            *string       `json:"error,omitempty"`
	DurationMS       int64         `json:"duration_ms"`
	CreatedAt        time.Time     `json:"created_at"`
}
