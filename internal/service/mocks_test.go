package service_test

import (
	"context"

	"github.com/anokye0712/ai-route-planner/internal/model"
	"github.com/anokye0712/ai-route-planner/internal/planner"
	"github.com/anokye0712/ai-route-planner/internal/store"
)

type mockExtractor struct {
	extractFn  func(ctx context.Context, query, userID string) (*model.PlanRequest, error)
	lastUserID string
}

func (m *mockExtractor) ExtractPlan(ctx context.Context, query, userID string) (*model.PlanRequest, error) {
	m.lastUserID = userID
	if m.extractFn != nil {
		return m.extractFn(ctx, query, userID)
	}
	return nil, nil
}

type mockResolver struct {
	resolveFn     func(ctx context.Context, addresses []string) (*planner.Resolution, error)
	lastAddresses []string
}

func (m *mockResolver) Resolve(ctx context.Context, addresses []string) (*planner.Resolution, error) {
	m.lastAddresses = addresses
	if m.resolveFn != nil {
		return m.resolveFn(ctx, addresses)
	}
	return &planner.Resolution{Index: map[string]int{}}, nil
}

type mockOptimizer struct {
	optimizeFn func(ctx context.Context, req *model.OptimizerRequest) (*model.RoutePlan, error)
	lastReq    *model.OptimizerRequest
}

func (m *mockOptimizer) Optimize(ctx context.Context, req *model.OptimizerRequest) (*model.RoutePlan, error) {
	m.lastReq = req
	if m.optimizeFn != nil {
		return m.optimizeFn(ctx, req)
	}
	return &model.RoutePlan{Type: "FeatureCollection"}, nil
}

type mockEnricher struct {
	enrichFn func(ctx context.Context, plan *model.RoutePlan, mode model.TravelMode)
	calls    int
}

func (m *mockEnricher) Enrich(ctx context.Context, plan *model.RoutePlan, mode model.TravelMode) {
	m.calls++
	if m.enrichFn != nil {
		m.enrichFn(ctx, plan, mode)
	}
}

type mockPlanRunStore struct {
	createFn     func(ctx context.Context, run *model.PlanRun) error
	getByIDFn    func(ctx context.Context, id int64) (*model.PlanRun, error)
	listRecentFn func(ctx context.Context, limit int32) ([]model.PlanRun, error)
	created      []*model.PlanRun
}

func (m *mockPlanRunStore) EnsureSchema(ctx context.Context) error { return nil }

func (m *mockPlanRunStore) Create(ctx context.Context, run *model.PlanRun) error {
	m.created = append(m.created, run)
	if m.createFn != nil {
		return m.createFn(ctx, run)
	}
	return nil
}

func (m *mockPlanRunStore) GetByID(ctx context.Context, id int64) (*model.PlanRun, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockPlanRunStore) ListRecent(ctx context.Context, limit int32) ([]model.PlanRun, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return []model.PlanRun{}, nil
}
