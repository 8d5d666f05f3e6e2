package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	e.HTTPErrorHandler = NotFoundJSON()

	e.Use(SetJSONContentType)

	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)

	// Ingest endpoints. The transport-level limiter is a coarse guard; the
	// pipeline's own rate window governs batch acceptance.
	ingest := v1.Group("")
	ingest.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(5), // 5 requests per second
		Burst:     10,
		ExpiresIn: 2 * time.Minute,
	})))
	ingest.POST("/webhook", h.Webhook)
	ingest.POST("/bot", h.BotUpdate)

	// Operator toggle CRUD
	toggleGroup := v1.Group("/toggles")
	toggleGroup.GET("", h.TogglesList)
	toggleGroup.POST("", h.TogglesUpsert)
	toggleGroup.GET("/:key", h.TogglesGet)
	toggleGroup.DELETE("/:key", h.TogglesDelete)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
