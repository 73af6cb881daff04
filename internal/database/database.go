package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"peoplehub/hr-portal/hr-portal-backend/internal/config"
)

// Connections holds the two handles the service works with: gorm for the
// onboarding aggregate and sqlx for the directory and document tables.
type Connections struct {
	Gorm *gorm.DB
	SQLX *sqlx.DB
}

// Open connects both handles to the configured database
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*Connections, error) {
	dsn := cfg.GetDatabaseURL()

	gdb, err := OpenGorm(dsn, cfg)
	if err != nil {
		return nil, err
	}

	sdb, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		if sqlDB, cerr := gdb.DB(); cerr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sdb.SetMaxOpenConns(cfg.MaxConnections)
	sdb.SetMaxIdleConns(cfg.MaxIdleConns)
	sdb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("Connected to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBName))
	return &Connections{Gorm: gdb, SQLX: sdb}, nil
}

// OpenGorm opens a gorm handle with duplicate-key errors translated to gorm.ErrDuplicatedKey
func OpenGorm(dsn string, cfg config.DatabaseConfig) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}
	return gdb, nil
}

func (c *Connections) Close() error {
	var first error
	if sqlDB, err := c.Gorm.DB(); err == nil {
		first = sqlDB.Close()
	}
	if err := c.SQLX.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
