package service_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anokye0712/ai-route-planner/common/id"
	"github.com/anokye0712/ai-route-planner/core/errs"
	"github.com/anokye0712/ai-route-planner/internal/model"
	"github.com/anokye0712/ai-route-planner/internal/planner"
	"github.com/anokye0712/ai-route-planner/internal/service"
	"github.com/anokye0712/ai-route-planner/internal/store"
)

func deliveryPlan() *model.PlanRequest {
	return &model.PlanRequest{
		Mode: model.TravelModeDrive,
		Agents: []model.Agent{{
			ID: "a1", Type: model.AgentTypeVehicle, StartAddress: "1 Depot Way",
		}},
		Jobs: []model.Job{{
			ID: "j1", Address: "9 Raffles Place", Duration: 300,
		}},
	}
}

func deliveryResolution() *planner.Resolution {
	return &planner.Resolution{
		Index: map[string]int{"1 Depot Way": 0, "9 Raffles Place": 1},
		Locations: []model.ResolvedLocation{
			{ID: "loc-0", Location: model.LonLat{103.80, 1.28}, Name: "1 Depot Way"},
			{ID: "loc-1", Location: model.LonLat{103.85, 1.29}, Name: "9 Raffles Place"},
		},
	}
}

var _ = Describe("PlanService", func() {
	var (
		extractor *mockExtractor
		resolver  *mockResolver
		optimizer *mockOptimizer
		enricher  *mockEnricher
		runs      *mockPlanRunStore
		svc       service.PlanService
		ctx       context.Context
	)

	newService := func(persist bool) service.PlanService {
		return service.NewPlanService(service.PlanServiceConfig{
			Extractor:     extractor,
			Resolver:      resolver,
			Optimizer:     optimizer,
			Enricher:      enricher,
			Runs:          runs,
			Persist:       persist,
			DefaultUserID: "default_user",
		})
	}

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		extractor = &mockExtractor{
			extractFn: func(ctx context.Context, query, userID string) (*model.PlanRequest, error) {
				return deliveryPlan(), nil
			},
		}
		resolver = &mockResolver{
			resolveFn: func(ctx context.Context, addresses []string) (*planner.Resolution, error) {
				return deliveryResolution(), nil
			},
		}
		optimizer = &mockOptimizer{}
		enricher = &mockEnricher{}
		runs = &mockPlanRunStore{}
		svc = newService(true)
	})

	It("runs the pipeline and records a completed run", func() {
		outcome, err := svc.PlanRoute(ctx, service.PlanParams{
			Query:  "deliver the parcels downtown today",
			UserID: "u-42",
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(outcome.Plan).NotTo(BeNil())
		Expect(outcome.RunID).NotTo(BeZero())
		Expect(outcome.Warnings.Empty()).To(BeTrue())
		Expect(enricher.calls).To(Equal(1))

		Expect(optimizer.lastReq).NotTo(BeNil())
		Expect(optimizer.lastReq.Locations).To(HaveLen(2))
		Expect(optimizer.lastReq.Agents).To(HaveLen(1))
		Expect(optimizer.lastReq.Jobs).To(HaveLen(1))

		Expect(runs.created).To(HaveLen(1))
		run := runs.created[0]
		Expect(run.ID).To(Equal(outcome.RunID))
		Expect(run.UserID).To(Equal("u-42"))
		Expect(run.Status).To(Equal(model.PlanRunStatusCompleted))
		Expect(run.Mode).To(Equal("drive"))
		Expect(run.LocationCount).To(Equal(int32(2)))
		Expect(run.AgentCount).To(Equal(int32(1)))
		Expect(run.JobCount).To(Equal(int32(1)))
	})

	It("substitutes the configured default user", func() {
		_, err := svc.PlanRoute(ctx, service.PlanParams{Query: "plan my delivery route please"})
		Expect(err).NotTo(HaveOccurred())
		Expect(extractor.lastUserID).To(Equal("default_user"))
		Expect(runs.created[0].UserID).To(Equal("default_user"))
	})

	It("asks the resolver for the plan's deduplicated addresses", func() {
		_, err := svc.PlanRoute(ctx, service.PlanParams{Query: "plan my delivery route please"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resolver.lastAddresses).To(ConsistOf("1 Depot Way", "9 Raffles Place"))
	})

	It("treats unassigned work as a warning, not an error", func() {
		optimizer.optimizeFn = func(ctx context.Context, req *model.OptimizerRequest) (*model.RoutePlan, error) {
			return &model.RoutePlan{
				Type:       "FeatureCollection",
				Properties: json.RawMessage(`{"unassigned":{"jobs_count":2,"agents_count":1}}`),
			}, nil
		}

		outcome, err := svc.PlanRoute(ctx, service.PlanParams{Query: "plan my delivery route please"})
		Expect(err).NotTo(HaveOccurred())

		Expect(outcome.Warnings.Unassigned.JobsCount).To(Equal(2))
		Expect(outcome.Warnings.Unassigned.AgentsCount).To(Equal(1))
		Expect(runs.created[0].Status).To(Equal(model.PlanRunStatusWithWarnings))
		Expect(runs.created[0].UnassignedJobs).To(Equal(int32(2)))
	})

	It("carries skipped entities and unresolved addresses as warnings", func() {
		extractor.extractFn = func(ctx context.Context, query, userID string) (*model.PlanRequest, error) {
			plan := deliveryPlan()
			plan.Jobs = append(plan.Jobs, model.Job{ID: "j2", Address: "nowhere at all", Duration: 60})
			return plan, nil
		}
		resolver.resolveFn = func(ctx context.Context, addresses []string) (*planner.Resolution, error) {
			res := deliveryResolution()
			res.Unresolved = []string{"nowhere at all"}
			return res, nil
		}

		outcome, err := svc.PlanRoute(ctx, service.PlanParams{Query: "plan my delivery route please"})
		Expect(err).NotTo(HaveOccurred())

		Expect(outcome.Warnings.UnresolvedAddresses).To(ConsistOf("nowhere at all"))
		Expect(outcome.Warnings.Skipped).To(ConsistOf(model.SkippedEntity{
			Kind: "job", ID: "j2", Reason: model.SkipReasonUngeocodable,
		}))
		Expect(runs.created[0].SkippedCount).To(Equal(int32(1)))
		Expect(runs.created[0].Status).To(Equal(model.PlanRunStatusWithWarnings))
	})

	It("fails the run when extraction fails", func() {
		extractor.extractFn = func(ctx context.Context, query, userID string) (*model.PlanRequest, error) {
			return nil, errs.NewSchemaError("extracted plan is not valid JSON", nil)
		}

		_, err := svc.PlanRoute(ctx, service.PlanParams{Query: "plan my delivery route please"})
		Expect(errs.IsSchema(err)).To(BeTrue())

		Expect(runs.created).To(HaveLen(1))
		Expect(runs.created[0].Status).To(Equal(model.PlanRunStatusFailed))
		Expect(runs.created[0].Error).NotTo(BeNil())
	})

	It("fails the run when the agent start cannot be resolved", func() {
		resolver.resolveFn = func(ctx context.Context, addresses []string) (*planner.Resolution, error) {
			return &planner.Resolution{
				Index: map[string]int{"9 Raffles Place": 0},
				Locations: []model.ResolvedLocation{
					{ID: "loc-0", Location: model.LonLat{103.85, 1.29}},
				},
				Unresolved: []string{"1 Depot Way"},
			}, nil
		}

		_, err := svc.PlanRoute(ctx, service.PlanParams{Query: "plan my delivery route please"})
		var te *errs.TranslationError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Stage).To(Equal("agents"))
		Expect(runs.created[0].Status).To(Equal(model.PlanRunStatusFailed))
	})

	It("fails the run when the optimizer fails", func() {
		optimizer.optimizeFn = func(ctx context.Context, req *model.OptimizerRequest) (*model.RoutePlan, error) {
			return nil, errs.NewUpstreamError(errs.ServiceOptimizer, errors.New("returned 500"))
		}

		_, err := svc.PlanRoute(ctx, service.PlanParams{Query: "plan my delivery route please"})
		svcName, ok := errs.IsUpstream(err)
		Expect(ok).To(BeTrue())
		Expect(svcName).To(Equal(errs.ServiceOptimizer))
		Expect(enricher.calls).To(BeZero())
		Expect(runs.created[0].Status).To(Equal(model.PlanRunStatusFailed))
	})

	It("still answers when recording the run fails", func() {
		runs.createFn = func(ctx context.Context, run *model.PlanRun) error {
			return errors.New("connection refused")
		}

		outcome, err := svc.PlanRoute(ctx, service.PlanParams{Query: "plan my delivery route please"})
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Plan).NotTo(BeNil())
	})

	It("returns no run ID when persistence is disabled", func() {
		svc = newService(false)

		outcome, err := svc.PlanRoute(ctx, service.PlanParams{Query: "plan my delivery route please"})
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.RunID).To(BeZero())
		// The run is still handed to the store; a no-op store discards it.
		Expect(runs.created).To(HaveLen(1))
	})

	It("rejects an empty query", func() {
		_, err := svc.PlanRoute(ctx, service.PlanParams{Query: "   "})
		Expect(errs.IsSchema(err)).To(BeTrue())
	})

	Describe("history", func() {
		It("passes GetRun through to the store", func() {
			runs.getByIDFn = func(ctx context.Context, id int64) (*model.PlanRun, error) {
				return &model.PlanRun{ID: id, Query: "stored"}, nil
			}
			run, err := svc.GetRun(ctx, 77)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.ID).To(Equal(int64(77)))
		})

		It("surfaces not-found from the store", func() {
			_, err := svc.GetRun(ctx, 1)
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("passes the limit through to ListRecent", func() {
			var gotLimit int32
			runs.listRecentFn = func(ctx context.Context, limit int32) ([]model.PlanRun, error) {
				gotLimit = limit
				return []model.PlanRun{{ID: 1}}, nil
			}
			list, err := svc.ListRuns(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(gotLimit).To(Equal(int32(5)))
		})
	})
})
