package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/anokye0712/ai-route-planner/common/id"
	"github.com/anokye0712/ai-route-planner/common/logger"
	"github.com/anokye0712/ai-route-planner/core/errs"
	"github.com/anokye0712/ai-route-planner/internal/extract"
	"github.com/anokye0712/ai-route-planner/internal/model"
	"github.com/anokye0712/ai-route-planner/internal/planner"
	"github.com/anokye0712/ai-route-planner/internal/store"
)

// AddressResolver geocodes a plan's address set into indexed locations.
type AddressResolver interface {
	Resolve(ctx context.Context, addresses []string) (*planner.Resolution, error)
}

// RouteOptimizer submits a translated problem and returns the agent routes.
type RouteOptimizer interface {
	Optimize(ctx context.Context, req *model.OptimizerRequest) (*model.RoutePlan, error)
}

// GeometryEnricher replaces per-agent geometries with detailed road geometry.
type GeometryEnricher interface {
	Enrich(ctx context.Context, plan *model.RoutePlan, mode model.TravelMode)
}

type PlanParams struct {
	Query  string
	UserID string
}

type PlanService interface {
	PlanRoute(ctx context.Context, params PlanParams) (*model.PlanOutcome, error)
	GetRun(ctx context.Context, id int64) (*model.PlanRun, error)
	ListRuns(ctx context.Context, limit int32) ([]model.PlanRun, error)
}

type PlanServiceConfig struct {
	Extractor extract.Extractor
	Resolver  AddressResolver
	Optimizer RouteOptimizer
	Enricher  GeometryEnricher
	Runs      store.PlanRunStore

	// Persist controls whether run IDs are surfaced to callers. With
	// persistence off the run ID still tags every log line.
	Persist bool

	// DefaultUserID substitutes for an absent caller identifier.
	DefaultUserID string
}

type planService struct {
	cfg PlanServiceConfig
}

func NewPlanService(cfg PlanServiceConfig) PlanService {
	return &planService{cfg: cfg}
}

// PlanRoute runs the full pipeline for one query: extraction, address
// resolution, translation into the optimizer's schema, submission, and
// geometry enrichment. Non-fatal degradations accumulate as warnings on the
// outcome; a failure in any stage aborts the request. The run is recorded
// either way, and a recording failure never fails the request.
func (s *planService) PlanRoute(ctx context.Context, params PlanParams) (*model.PlanOutcome, error) {
	start := time.Now()
	runID := id.New()

	sc := logger.StartSpan(ctx, "plan.route")
	defer sc.End()
	ctx = sc.Context()

	userID := params.UserID
	if userID == "" {
		userID = s.cfg.DefaultUserID
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PlanRunID: logger.Ptr(runID),
		UserID:    logger.Ptr(userID),
	})

	run := &model.PlanRun{ID: runID, UserID: userID, Query: params.Query}
	fail := func(err error) (*model.PlanOutcome, error) {
		sc.RecordError(err)
		run.Status = model.PlanRunStatusFailed
		run.Error = logger.Ptr(err.Error())
		run.DurationMS = time.Since(start).Milliseconds()
		s.record(ctx, run)
		return nil, err
	}

	if strings.TrimSpace(params.Query) == "" {
		return fail(errs.NewSchemaError("query is required", nil))
	}

	slog.InfoContext(ctx, "extracting plan from query",
		"query", logger.Truncate(params.Query, 200))
	plan, err := s.cfg.Extractor.ExtractPlan(ctx, params.Query, userID)
	if err != nil {
		return fail(err)
	}
	run.Mode = string(plan.Mode)
	ctx = logger.WithLogFields(ctx, logger.LogFields{TravelMode: logger.Ptr(string(plan.Mode))})

	res, err := s.cfg.Resolver.Resolve(ctx, plan.Addresses())
	if err != nil {
		return fail(err)
	}

	req, skipped, err := planner.Translate(plan, res)
	if err != nil {
		return fail(err)
	}
	run.LocationCount = int32(len(req.Locations))
	run.AgentCount = int32(len(req.Agents))
	run.JobCount = int32(len(req.Jobs))
	run.ShipmentCount = int32(len(req.Shipments))
	run.SkippedCount = int32(len(skipped))

	routePlan, err := s.cfg.Optimizer.Optimize(ctx, req)
	if err != nil {
		return fail(err)
	}

	s.cfg.Enricher.Enrich(ctx, routePlan, plan.Mode)

	warnings := model.PlanWarnings{
		UnresolvedAddresses: res.Unresolved,
		Skipped:             skipped,
		Unassigned:          routePlan.Unassigned(),
	}
	run.UnassignedJobs = int32(warnings.Unassigned.JobsCount)
	run.UnassignedAgents = int32(warnings.Unassigned.AgentsCount)

	run.Status = model.PlanRunStatusCompleted
	if !warnings.Empty() {
		run.Status = model.PlanRunStatusWithWarnings
		slog.WarnContext(ctx, "plan completed with warnings",
			"unresolved_addresses", len(warnings.UnresolvedAddresses),
			"skipped", len(warnings.Skipped),
			"unassigned_jobs", warnings.Unassigned.JobsCount,
			"unassigned_agents", warnings.Unassigned.AgentsCount)
	}
	run.DurationMS = time.Since(start).Milliseconds()
	s.record(ctx, run)

	slog.InfoContext(ctx, "route plan ready",
		"status", run.Status,
		"features", len(routePlan.Features),
		"duration_ms", run.DurationMS)

	outcome := &model.PlanOutcome{Plan: routePlan, Warnings: warnings}
	if s.cfg.Persist {
		outcome.RunID = runID
	}
	return outcome, nil
}

func (s *planService) GetRun(ctx context.Context, id int64) (*model.PlanRun, error) {
	return s.cfg.Runs.GetByID(ctx, id)
}

func (s *planService) ListRuns(ctx context.Context, limit int32) ([]model.PlanRun, error) {
	return s.cfg.Runs.ListRecent(ctx, limit)
}

func (s *planService) record(ctx context.Context, run *model.PlanRun) {
	if err := s.cfg.Runs.Create(ctx, run); err != nil {
		slog.ErrorContext(ctx, "recording plan run failed", "error", err)
	}
}
