package handler_test

import (
	"context"

	"github.com/anokye0712/ai-route-planner/internal/model"
	"github.com/anokye0712/ai-route-planner/internal/service"
	"github.com/anokye0712/ai-route-planner/internal/store"
)

type mockPlanService struct {
	planRouteFn func(ctx context.Context, params service.PlanParams) (*model.PlanOutcome, error)
	getRunFn    func(ctx context.Context, id int64) (*model.PlanRun, error)
	listRunsFn  func(ctx context.Context, limit int32) ([]model.PlanRun, error)
}

func (m *mockPlanService) PlanRoute(ctx context.Context, params service.PlanParams) (*model.PlanOutcome, error) {
	if m.planRouteFn != nil {
		return m.planRouteFn(ctx, params)
	}
	return &model.PlanOutcome{Plan: &model.RoutePlan{Type: "FeatureCollection"}}, nil
}

func (m *mockPlanService) GetRun(ctx context.Context, id int64) (*model.PlanRun, error) {
	if m.getRunFn != nil {
		return m.getRunFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockPlanService) ListRuns(ctx context.Context, limit int32) ([]model.PlanRun, error) {
	if m.listRunsFn != nil {
		return m.listRunsFn(ctx, limit)
	}
	return []model.PlanRun{}, nil
}
