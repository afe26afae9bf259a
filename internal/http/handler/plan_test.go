package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anokye0712/ai-route-planner/core/errs"
	"github.com/anokye0712/ai-route-planner/internal/http/handler"
	"github.com/anokye0712/ai-route-planner/internal/model"
	"github.com/anokye0712/ai-route-planner/internal/service"
)

func planRouteRequest(query string) *http.Request {
	body, _ := json.Marshal(map[string]string{
		"query":   query,
		"user_id": "u-42",
	})
	req := httptest.NewRequest(http.MethodPost, "/plan_route", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

var _ = Describe("PlanHandler", func() {
	var (
		router *gin.Engine
		svc    *mockPlanService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockPlanService{}
		h := handler.NewPlanHandler(svc)
		router.POST("/plan_route", h.PlanRoute)
	})

	It("returns the route plan with the run ID header on success", func() {
		svc.planRouteFn = func(_ context.Context, params service.PlanParams) (*model.PlanOutcome, error) {
			Expect(params.Query).To(Equal("deliver two parcels from the depot"))
			Expect(params.UserID).To(Equal("u-42"))
			return &model.PlanOutcome{
				RunID: 123,
				Plan: &model.RoutePlan{
					Type:     "FeatureCollection",
					Features: []model.RouteFeature{{Type: "Feature"}},
				},
			}, nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, planRouteRequest("deliver two parcels from the depot"))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("X-Plan-Run-ID")).To(Equal("123"))

		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["type"]).To(Equal("FeatureCollection"))
		Expect(resp["features"]).To(HaveLen(1))
		Expect(resp).NotTo(HaveKey("warnings"))
	})

	It("omits the run ID header when persistence is disabled", func() {
		svc.planRouteFn = func(_ context.Context, _ service.PlanParams) (*model.PlanOutcome, error) {
			return &model.PlanOutcome{Plan: &model.RoutePlan{Type: "FeatureCollection"}}, nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, planRouteRequest("deliver two parcels from the depot"))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Values("X-Plan-Run-ID")).To(BeEmpty())
	})

	It("attaches warnings to the response when the plan degraded", func() {
		svc.planRouteFn = func(_ context.Context, _ service.PlanParams) (*model.PlanOutcome, error) {
			return &model.PlanOutcome{
				RunID: 7,
				Plan:  &model.RoutePlan{Type: "FeatureCollection"},
				Warnings: model.PlanWarnings{
					UnresolvedAddresses: []string{"nowhere at all"},
					Skipped: []model.SkippedEntity{
						{Kind: "job", ID: "j2", Reason: "ungeocodable address"},
					},
					Unassigned: model.UnassignedCounts{JobsCount: 1},
				},
			}, nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, planRouteRequest("deliver two parcels from the depot"))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp).To(HaveKey("warnings"))

		warnings := resp["warnings"].(map[string]any)
		Expect(warnings["unresolved_addresses"]).To(ConsistOf("nowhere at all"))
		Expect(warnings["skipped"]).To(HaveLen(1))
	})

	It("rejects a query below the minimum length without calling the service", func() {
		called := false
		svc.planRouteFn = func(_ context.Context, _ service.PlanParams) (*model.PlanOutcome, error) {
			called = true
			return nil, nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, planRouteRequest("too short"))

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(called).To(BeFalse())
	})

	It("returns 400 on a malformed body", func() {
		req := httptest.NewRequest(http.MethodPost, "/plan_route", bytes.NewBufferString(`{`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("maps schema errors to 400 with the reason", func() {
		svc.planRouteFn = func(_ context.Context, _ service.PlanParams) (*model.PlanOutcome, error) {
			return nil, errs.NewSchemaError("at least one agent is required", nil)
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, planRouteRequest("deliver two parcels from the depot"))

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		var resp map[string]string
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["error"]).To(ContainSubstring("at least one agent is required"))
	})

	It("maps upstream failures to 502 naming only the service", func() {
		svc.planRouteFn = func(_ context.Context, _ service.PlanParams) (*model.PlanOutcome, error) {
			return nil, errs.NewUpstreamError(errs.ServiceOptimizer, errors.New("connect: connection refused"))
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, planRouteRequest("deliver two parcels from the depot"))

		Expect(w.Code).To(Equal(http.StatusBadGateway))
		var resp map[string]string
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["error"]).To(Equal("optimizer service unavailable"))
		Expect(resp["error"]).NotTo(ContainSubstring("connection refused"))
	})

	It("maps translation failures to the generic 500", func() {
		svc.planRouteFn = func(_ context.Context, _ service.PlanParams) (*model.PlanOutcome, error) {
			return nil, errs.NewTranslationError("agents", errors.New(`agent "a2" start address could not be resolved`))
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, planRouteRequest("deliver two parcels from the depot"))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		var resp map[string]string
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["error"]).To(Equal("failed to plan route"))
	})

	It("hides internal failures behind a generic 500", func() {
		svc.planRouteFn = func(_ context.Context, _ service.PlanParams) (*model.PlanOutcome, error) {
			return nil, errors.New("pipeline exploded")
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, planRouteRequest("deliver two parcels from the depot"))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		var resp map[string]string
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["error"]).To(Equal("failed to plan route"))
		Expect(resp["error"]).NotTo(ContainSubstring("exploded"))
	})
})
