package planner

import (
	"fmt"

	"github.com/anokye0712/ai-route-planner/core/errs"
	"github.com/anokye0712/ai-route-planner/internal/model"
)

// Translate maps a validated plan onto the resolved location list, producing
// the optimizer submission plus the entities dropped non-fatally.
//
// Fatality rules: an agent whose start address is unresolved sinks the whole
// request (nothing can be routed for it), while jobs and shipments touching
// unresolved addresses are skipped individually. An unresolved or absent
// agent end address falls back to the start index. If no routable work
// remains after skipping, the translation fails.
func Translate(plan *model.PlanRequest, res *Resolution) (*model.OptimizerRequest, []model.SkippedEntity, error) {
	agents := make([]model.OptimizerAgent, 0, len(plan.Agents))
	for i := range plan.Agents {
		a := &plan.Agents[i]
		startIdx, ok := res.IndexOf(a.StartAddress)
		if !ok {
			return nil, nil, errs.NewTranslationError("agents",
				fmt.Errorf("start address %q for agent %q could not be resolved", a.StartAddress, a.ID))
		}
		endIdx := startIdx
		if a.EndAddress != "" {
			if idx, ok := res.IndexOf(a.EndAddress); ok {
				endIdx = idx
			}
		}

		agents = append(agents, model.OptimizerAgent{
			ID:                 a.ID,
			StartLocationIndex: startIdx,
			EndLocationIndex:   endIdx,
			TimeWindows:        a.TimeWindows,
			Breaks:             translateBreaks(a.Breaks),
			Capacities:         amountVector(a.DeliveryCapacity, a.PickupCapacity),
			Capabilities:       a.Capabilities,
		})
	}

	var skipped []model.SkippedEntity

	jobs := make([]model.OptimizerJob, 0, len(plan.Jobs))
	for i := range plan.Jobs {
		j := &plan.Jobs[i]
		idx, ok := res.IndexOf(j.Address)
		if !ok {
			skipped = append(skipped, model.SkippedEntity{
				Kind:   "job",
				ID:     j.ID,
				Reason: model.SkipReasonUngeocodable,
			})
			continue
		}
		jobs = append(jobs, model.OptimizerJob{
			ID:            j.ID,
			LocationIndex: idx,
			Duration:      j.Duration,
			TimeWindows:   j.TimeWindows,
			Demands:       amountVector(j.DeliveryAmount, j.PickupAmount),
			Requirements:  j.Requirements,
			Priority:      j.Priority,
		})
	}

	shipments := make([]model.OptimizerShipment, 0, len(plan.Shipments))
	for i := range plan.Shipments {
		s := &plan.Shipments[i]
		pickupIdx, pickupOK := res.IndexOf(s.Pickup.Address)
		deliveryIdx, deliveryOK := res.IndexOf(s.Delivery.Address)
		if !pickupOK || !deliveryOK {
			skipped = append(skipped, model.SkippedEntity{
				Kind:   "shipment",
				ID:     s.ID,
				Reason: model.SkipReasonUngeocodable,
			})
			continue
		}
		shipments = append(shipments, model.OptimizerShipment{
			ID: s.ID,
			Pickup: model.OptimizerShipmentLeg{
				LocationIndex: pickupIdx,
				Duration:      s.Pickup.Duration,
				TimeWindows:   s.Pickup.TimeWindows,
			},
			Delivery: model.OptimizerShipmentLeg{
				LocationIndex: deliveryIdx,
				Duration:      s.Delivery.Duration,
				TimeWindows:   s.Delivery.TimeWindows,
			},
			Demands:      []float64{float64(s.Amount)},
			Requirements: s.Requirements,
			Priority:     s.Priority,
		})
	}

	// Submission invariants: the optimizer rejects an empty location list,
	// an empty agent list, and a plan with no work.
	if len(res.Locations) == 0 {
		return nil, skipped, errs.NewTranslationError("locations",
			fmt.Errorf("no geocoded locations remain"))
	}
	if len(agents) == 0 {
		return nil, skipped, errs.NewTranslationError("agents",
			fmt.Errorf("no agents remain"))
	}
	if len(jobs) == 0 && len(shipments) == 0 {
		return nil, skipped, errs.NewTranslationError("workload",
			fmt.Errorf("no routable jobs or shipments remain after address resolution"))
	}

	req := &model.OptimizerRequest{
		Mode:      plan.Mode,
		Locations: res.Locations,
		Agents:    agents,
		Jobs:      jobs,
		Shipments: shipments,
		Options: &model.OptimizerOptions{
			Traffic: "approximated",
			Units:   "metric",
		},
	}
	return req, skipped, nil
}

// amountVector builds the positional two-slot vector shared by capacities and
// demands: slot 0 is the delivery dimension, slot 1 the pickup dimension.
// Trailing absent dimensions are dropped, but a pickup-only entity keeps an
// explicit zero in the delivery slot so the dimensions stay aligned across
// every vector in one submission.
func amountVector(delivery, pickup *int) []float64 {
	switch {
	case delivery == nil && pickup == nil:
		return nil
	case pickup == nil:
		return []float64{float64(*delivery)}
	case delivery == nil:
		return []float64{0, float64(*pickup)}
	default:
		return []float64{float64(*delivery), float64(*pickup)}
	}
}

func translateBreaks(breaks []model.AgentBreak) []model.OptimizerBreak {
	if len(breaks) == 0 {
		return nil
	}
	out := make([]model.OptimizerBreak, len(breaks))
	for i, b := range breaks {
		out[i] = model.OptimizerBreak{
			Duration:    b.Duration,
			TimeWindows: b.TimeWindows,
		}
	}
	return out
}
