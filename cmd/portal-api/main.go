package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "peoplehub/hr-portal/hr-portal-backend/api/v1"
	"peoplehub/hr-portal/hr-portal-backend/internal/app"
	"peoplehub/hr-portal/hr-portal-backend/internal/config"
	"peoplehub/hr-portal/hr-portal-backend/internal/logging"
	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding/scheduler"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise application", zap.Error(err))
	}
	defer application.Close()

	// Overdue sweep
	var sweeper *scheduler.OverdueScheduler
	if cfg.Onboarding.SweepEnabled {
		sweeper, err = scheduler.NewOverdueScheduler(application.Onboarding, logger.Named("sweeper"), scheduler.Config{
			CronExpression: cfg.Onboarding.SweepCron,
			Timezone:       cfg.Onboarding.SweepTimezone,
			Timeout:        cfg.Onboarding.SweepTimeout,
		})
		if err != nil {
			logger.Fatal("Failed to create overdue scheduler", zap.Error(err))
		}
		if err := sweeper.Start(); err != nil {
			logger.Fatal("Failed to start overdue scheduler", zap.Error(err))
		}
	}

	// Setup Router
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-User-ID, X-Organization-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	onboardingAPI := v1.SetupOnboardingAPI(application.Onboarding, application.Documents, logger)
	v1.RegisterOnboardingRoutes(router, onboardingAPI, cfg.Security.JWTSecret)

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "healthy", "timestamp": time.Now()}
		if err := application.DB.SQLX.PingContext(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = err.Error()
		}
		if sweeper != nil {
			body["overdue_sweep"] = sweeper.Status()
		}
		c.JSON(status, body)
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
