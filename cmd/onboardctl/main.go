package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/app"
	"peoplehub/hr-portal/hr-portal-backend/internal/config"
	"peoplehub/hr-portal/hr-portal-backend/internal/logging"
)

var configPath string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "onboardctl",
		Short:         "Operate the employee onboarding engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the JSON config file")

	root.AddCommand(
		newMigrateCommand(),
		newSeedCommand(),
		newSweepCommand(),
		newExportCommand(),
	)
	return root
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// withApp wires the engine, runs fn and releases the connections afterwards
func withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	return fn(application)
}
