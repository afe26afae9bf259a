package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anokye0712/ai-route-planner/core/errs"
	"github.com/anokye0712/ai-route-planner/internal/http/dto"
	"github.com/anokye0712/ai-route-planner/internal/service"
)

type PlanHandler struct {
	service service.PlanService
}

func NewPlanHandler(service service.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

func (h *PlanHandler) PlanRoute(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PlanRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid plan request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.service.PlanRoute(ctx, service.PlanParams{
		Query:  req.Query,
		UserID: req.UserID,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	if outcome.RunID != 0 {
		c.Header("X-Plan-Run-ID", strconv.FormatInt(outcome.RunID, 10))
	}

	resp := dto.PlanRouteResponse{RoutePlan: outcome.Plan}
	if !outcome.Warnings.Empty() {
		resp.Warnings = &outcome.Warnings
	}
	c.JSON(http.StatusOK, resp)
}

// renderError maps the pipeline's error taxonomy onto status codes. Schema
// violations carry their message to the caller; upstream and internal
// failures return generic bodies with the detail kept in the log.
func (h *PlanHandler) renderError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	if errs.IsSchema(err) {
		slog.WarnContext(ctx, "plan request rejected", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if svc, ok := errs.IsUpstream(err); ok {
		slog.ErrorContext(ctx, "upstream service failure", "service", svc, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("%s service unavailable", svc)})
		return
	}
	slog.ErrorContext(ctx, "failed to plan route", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to plan route"})
}
