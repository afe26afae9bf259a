package router

import (
	"github.com/anokye0712/ai-route-planner/internal/http/handler"
	"github.com/gin-gonic/gin"
)

func PlanRouter(router *gin.RouterGroup, handler *handler.PlanHandler) {
	router.POST("/plan_route", handler.PlanRoute)
}

func PlanRunRouter(router *gin.RouterGroup, handler *handler.PlanRunHandler) {
	router.GET("", handler.List)
	router.GET("/:id", handler.Get)
}
