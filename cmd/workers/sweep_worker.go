package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/app"
	"peoplehub/hr-portal/hr-portal-backend/internal/config"
	"peoplehub/hr-portal/hr-portal-backend/internal/logging"
	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding/scheduler"
)

// Standalone overdue sweep worker for deployments that run the API with
// ONBOARDING_SWEEP_ENABLED=false.
func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	runOnce := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise application", zap.Error(err))
	}
	defer application.Close()

	sweeper, err := scheduler.NewOverdueScheduler(application.Onboarding, logger.Named("sweeper"), scheduler.Config{
		CronExpression: cfg.Onboarding.SweepCron,
		Timezone:       cfg.Onboarding.SweepTimezone,
		Timeout:        cfg.Onboarding.SweepTimeout,
	})
	if err != nil {
		logger.Fatal("Failed to create overdue scheduler", zap.Error(err))
	}

	if *runOnce {
		if _, err := sweeper.RunNow(ctx); err != nil {
			logger.Error("Sweep failed", zap.Error(err))
			application.Close()
			os.Exit(1)
		}
		return
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Sweep worker starting", zap.String("schedule", cfg.Onboarding.SweepCron))
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start overdue scheduler", zap.Error(err))
	}

	<-sigChan
	logger.Info("Shutdown signal received")
	sweeper.Stop()
	logger.Info("Sweep worker stopped")
}
