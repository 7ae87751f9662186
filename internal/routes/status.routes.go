package routes

import (
	"diskwatch/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterStatusRoutes(r *gin.Engine, api *controllers.API) {
	r.GET("/health", api.Health)
	r.GET("/status", api.GetStatus)
	r.GET("/history", api.GetHistory)
	r.GET("/disk", api.GetDisks)
	r.GET("/metrics", api.GetMetrics)
}
