package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/config"
	"peoplehub/hr-portal/hr-portal-backend/internal/database"
	"peoplehub/hr-portal/hr-portal-backend/internal/directory"
	"peoplehub/hr-portal/hr-portal-backend/internal/documents"
	"peoplehub/hr-portal/hr-portal-backend/internal/notifications"
	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding"
	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding/dashboard"
)

// App is the wired onboarding engine shared by the API server and the CLI
type App struct {
	Config     *config.Config
	DB         *database.Connections
	Onboarding *onboarding.Service
	Documents  *documents.Dispatcher
	Logger     *zap.Logger
}

// New connects to the database, migrates when configured and wires every collaborator
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	conns, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := onboarding.Migrate(conns.Gorm); err != nil {
			conns.Close()
			return nil, fmt.Errorf("failed to migrate onboarding schema: %w", err)
		}
	}

	notifier, err := newNotifier(ctx, cfg.AWS, logger)
	if err != nil {
		conns.Close()
		return nil, err
	}

	dir := directory.NewService(directory.NewRepository(conns.SQLX), logger.Named("directory"))
	docs := documents.NewDispatcher(documents.NewRepository(conns.SQLX), logger.Named("documents"))

	service := onboarding.NewService(
		onboarding.NewGormRepository(conns.Gorm),
		dir,
		docs,
		notifier,
		logger.Named("onboarding"),
		onboarding.WithDashboardConfig(dashboard.AggregatorConfig{
			CacheTTL:     cfg.Onboarding.DashboardCacheTTL,
			RecentWindow: time.Duration(cfg.Onboarding.RecentCompletedDays) * 24 * time.Hour,
		}),
	)

	return &App{
		Config:     cfg,
		DB:         conns,
		Onboarding: service,
		Documents:  docs,
		Logger:     logger,
	}, nil
}

func newNotifier(ctx context.Context, cfg config.AWSConfig, logger *zap.Logger) (onboarding.Notifier, error) {
	if cfg.SNSTopicARN == "" {
		logger.Info("No SNS topic configured, step notices are logged only")
		return notifications.NewLogNotifier(logger.Named("notifications")), nil
	}
	client, err := notifications.NewSNSClient(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}
	return notifications.NewSNSPublisher(client, cfg.SNSTopicARN, logger.Named("notifications")), nil
}

func (a *App) Close() {
	a.Onboarding.Close()
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn("Failed to close database", zap.Error(err))
	}
}
