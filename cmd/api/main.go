package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/payfi/payfi-backend/internal/config"
	"github.com/dafibh/payfi/payfi-backend/internal/handler"
	"github.com/dafibh/payfi/payfi-backend/internal/middleware"
	"github.com/dafibh/payfi/payfi-backend/internal/policy"
	"github.com/dafibh/payfi/payfi-backend/internal/repository/postgres"
	"github.com/dafibh/payfi/payfi-backend/internal/repository/storage"
	"github.com/dafibh/payfi/payfi-backend/internal/service"
	"github.com/dafibh/payfi/payfi-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// @title Pay-Fi API
// @version 1.0
// @description Agent spending policy and spend tracking for the Pay-Fi credit dashboard
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Load the default agent policy
	defaults, err := policy.LoadDefaults(cfg.Policy.DefaultsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load policy defaults")
	}

	// Initialize repositories
	agentPolicyRepo := postgres.NewAgentPolicyRepository(pool)

	// In-memory spend trackers, one per agent
	trackers := policy.NewTrackerRegistry(cfg.Policy.TrackerIdleTTL)
	defer trackers.Stop()

	// WebSocket hub for real-time decision and policy events
	hub := websocket.NewHub()

	// Initialize services
	agentPolicyService := service.NewAgentPolicyService(agentPolicyRepo, defaults)
	agentPolicyService.SetEventPublisher(hub)

	spendingService := service.NewSpendingService(agentPolicyService, trackers, log.Logger)
	spendingService.SetEventPublisher(hub)

	if cfg.S3.Enabled {
		exportRepo, err := storage.NewS3ExportRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Warn().Err(err).Str("bucket", cfg.S3.Bucket).Msg("History export disabled: S3 unavailable")
		} else {
			spendingService.SetExportRepository(exportRepo)
			log.Info().Str("bucket", cfg.S3.Bucket).Msg("History export enabled")
		}
	}

	// Initialize auth
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket token validator")
	}

	evaluateLimiter := middleware.NewRateLimiter(cfg.Policy.EvaluateRateLimit, cfg.Policy.EvaluateBurst)
	defer evaluateLimiter.Stop()

	// Initialize handlers
	agentPolicyHandler := handler.NewAgentPolicyHandler(agentPolicyService)
	spendingHandler := handler.NewSpendingHandler(spendingService)
	websocketHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)
	openAPIHandler := handler.NewOpenAPIHandler(handler.DefaultServers(cfg.Port))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// API docs
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", openAPIHandler.ServeSpec)

	// Real-time event stream (token in query string)
	e.GET("/ws", websocketHandler.HandleWS)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, evaluateLimiter, agentPolicyHandler, spendingHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
