package api

import (
	"trivai/internal/config"
	"trivai/pkg/httpmiddleware"
	"trivai/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine of the admin API.
func NewRouter(api *API, cfg config.RateLimiterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), httpmiddleware.RequestLog(api.logger))
	if cfg.Enabled {
		router.Use(httpmiddleware.RateLimit(ratelimiter.New(cfg.Rate, cfg.Capacity)))
	}
	RegisterRoutes(router, api)
	return router
}

// RegisterRoutes registers all the routes of the admin API.
func RegisterRoutes(router *gin.Engine, api *API) {
	router.GET("/healthz", api.HealthHandler)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/facts/random", api.RandomFactHandler)
		v1.GET("/facts/count", api.CountHandler)
		v1.GET("/trivia", api.TriviaHandler)
	}
}
