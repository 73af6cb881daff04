package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/database"
	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the onboarding tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.OpenGorm(cfg.Database.GetDatabaseURL(), cfg.Database)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := onboarding.Migrate(db); err != nil {
				return err
			}
			logger.Info("Onboarding schema migrated", zap.String("database", cfg.Database.DBName))
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}
