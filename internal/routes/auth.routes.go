package routes

import (
	"diskwatch/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the token-guarded live feed.
// Tokens are minted at startup and logged; there is no HTTP endpoint that issues them.
func RegisterAuthRoutes(r *gin.Engine, api *controllers.API) {
	r.GET("/ws", api.HandleWebSocket)
}
