package dto

import (
	"github.com/anokye0712/ai-route-planner/internal/model"
)

type PlanRouteRequest struct {
	Query  string `json:"query" binding:"required,min=10"`
	UserID string `json:"user_id,omitempty"`
}

// PlanRouteResponse is the enriched feature collection, passed through from
// the optimizer, with the accumulated warnings attached when any exist.
type PlanRouteResponse struct {
	*model.RoutePlan
	Warnings *model.PlanWarnings `json:"warnings,omitempty"`
}

type PlanRunListResponse struct {
	Runs []model.PlanRun `json:"runs"`
}
