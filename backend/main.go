package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/config"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/handler"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/middleware"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/pkg/logger"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/service"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully", "council", cfg.Council.BaseURL)

	// Initialize services
	disk, err := service.NewDiskStore(cfg.Storage.DataDir)
	if err != nil {
		slog.Error("failed to initialize data dir", "error", err)
		os.Exit(1)
	}

	var retention *service.RetentionService
	if cfg.Retention.Enabled {
		retention, err = service.NewRetentionService(&cfg.Retention)
		if err != nil {
			slog.Error("failed to initialize retention storage", "error", err)
			os.Exit(1)
		}
		if err := retention.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure retention bucket", "error", err)
			os.Exit(1)
		}
	}

	councilSvc := service.NewCouncilService(&cfg.Council)

	store := service.NewJobStore(func(analyzing []*model.AnalysisJob) {
		if err := disk.SaveAnalyzing(analyzing); err != nil {
			slog.Warn("failed to persist in-flight jobs", "error", err)
		}
	})
	settings := service.NewSettingsStore(disk)
	manager := service.NewJobManager(store, councilSvc, retention)

	// Restore in-flight jobs and reconcile with the backend without
	// blocking startup; the backend may be slow or down.
	go manager.Recover(context.Background(), disk)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	reportHandler := handler.NewReportHandler(manager, settings)
	settingsHandler := handler.NewSettingsHandler(settings)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                // Request ID for tracing
	router.Use(middleware.Recovery())                 // Panic recovery
	router.Use(middleware.RequestLogger())            // Access logging
	router.Use(corsMiddleware())                      // CORS
	router.Use(middleware.RateLimit(60, time.Minute)) // Rate limiting: 60 requests per minute

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/analyze", reportHandler.Analyze)
		protected.GET("/reports", reportHandler.List)
		protected.GET("/reports/:id", reportHandler.Get)
		protected.DELETE("/reports/:id", reportHandler.Delete)
		protected.DELETE("/reports", reportHandler.Clear)
		protected.GET("/reports/:id/annotated", reportHandler.Annotated)
		protected.GET("/reports/:id/highlighted", reportHandler.Highlighted)
		protected.GET("/reports/:id/file", reportHandler.File)
		protected.GET("/dashboard-stats", reportHandler.Stats)

		protected.GET("/settings", settingsHandler.Get)
		protected.PUT("/settings", settingsHandler.Update)
		protected.GET("/golden-clauses", settingsHandler.GoldenClauses)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
