package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/salao-caixa/caixa-backend/internal/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Movement  *MovementHandler
	Service   *ServiceHandler
	Report    *ReportHandler
	WebSocket *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, h Handlers, rateLimiter *middleware.RateLimiter) {
	// API docs
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", ServeOpenAPI3Spec)

	// Live updates
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API version 1
	api := e.Group("/api/v1")
	if rateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	// Ledger routes
	movements := api.Group("/movements")
	movements.GET("", h.Movement.GetMovements)
	movements.POST("", h.Movement.CreateMovement)
	movements.GET("/:id", h.Movement.GetMovement)
	movements.PUT("/:id", h.Movement.UpdateMovement)
	movements.DELETE("/:id", h.Movement.DeleteMovement)

	// Service catalog routes
	services := api.Group("/services")
	services.GET("", h.Service.GetServices)
	services.POST("", h.Service.CreateService)
	services.GET("/:id", h.Service.GetService)
	services.PUT("/:id", h.Service.UpdateService)
	services.DELETE("/:id", h.Service.DeleteService)

	// Aggregates and reports
	api.GET("/summary", h.Report.GetSummary)
	api.GET("/dashboard", h.Report.GetDashboard)
	api.GET("/reports", h.Report.GetReport)
	api.GET("/reports/export", h.Report.ExportReport)
}
