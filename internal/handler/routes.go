package handler

import (
	"github.com/dafibh/payfi/payfi-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, evaluateLimiter *middleware.RateLimiter, policyHandler *AgentPolicyHandler, spendingHandler *SpendingHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Agent routes (protected)
	agents := api.Group("/agents/:agentId")
	agents.Use(authMiddleware.Authenticate())

	agents.GET("/policy", policyHandler.GetPolicy)
	agents.PUT("/policy", policyHandler.UpdatePolicy)
	agents.DELETE("/policy", policyHandler.ResetPolicy)
	agents.GET("/policy/onchain", policyHandler.GetOnChainPolicy)

	agents.POST("/evaluate", spendingHandler.Evaluate, middleware.AgentRateLimit(evaluateLimiter))

	agents.POST("/spending", spendingHandler.RecordSpending)
	agents.GET("/spending", spendingHandler.GetHistory)
	agents.DELETE("/spending", spendingHandler.ClearHistory)
	agents.GET("/spending/breakdown", spendingHandler.GetBreakdown)
	agents.POST("/spending/export", spendingHandler.ExportHistory)
}
