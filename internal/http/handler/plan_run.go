package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anokye0712/ai-route-planner/internal/http/dto"
	"github.com/anokye0712/ai-route-planner/internal/service"
	"github.com/anokye0712/ai-route-planner/internal/store"
)

const (
	defaultRunListLimit = 20
	maxRunListLimit     = 100
)

type PlanRunHandler struct {
	service service.PlanService
}

func NewPlanRunHandler(service service.PlanService) *PlanRunHandler {
	return &PlanRunHandler{service: service}
}

func (h *PlanRunHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan run id"})
		return
	}

	run, err := h.service.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan run not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to fetch plan run", "plan_run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch plan run"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *PlanRunHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	limit := defaultRunListLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxRunListLimit {
		limit = maxRunListLimit
	}

	runs, err := h.service.ListRuns(ctx, int32(limit))
	if err != nil {
		slog.ErrorContext(ctx, "failed to list plan runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list plan runs"})
		return
	}

	c.JSON(http.StatusOK, dto.PlanRunListResponse{Runs: runs})
}
