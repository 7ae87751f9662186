package routes

import (
	"diskwatch/internal/config"
	"diskwatch/internal/controllers"
	"diskwatch/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// NewRouter builds the status API engine. The websocket feed is only
// registered when the API has an auth service and a hub.
// Forwarded client IPs are honoured only from cfg.TrustedProxies.
func NewRouter(cfg *config.Config, api *controllers.API) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, errors.Wrap(err, "invalid trusted proxies")
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(api.Log))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.IPAllowListMiddleware(middleware.NewIPAllowList(cfg.AllowedIPs), api.Log))
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(20, 40), api.Log))

	RegisterStatusRoutes(r, api)
	if api.Auth != nil && api.Hub != nil {
		RegisterAuthRoutes(r, api)
	}

	return r, nil
}
