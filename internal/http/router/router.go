package router

import (
	"github.com/anokye0712/ai-route-planner/internal/http/handler"
	"github.com/anokye0712/ai-route-planner/internal/service"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		planHandler := handler.NewPlanHandler(services.Plan())
		PlanRouter(v1, planHandler)

		runHandler := handler.NewPlanRunHandler(services.Plan())
		PlanRunRouter(v1.Group("/plan_runs"), runHandler)
	}
}
