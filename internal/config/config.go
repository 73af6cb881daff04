package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Security   SecurityConfig   `json:"security"`
	Logging    LoggingConfig    `json:"logging"`
	Onboarding OnboardingConfig `json:"onboarding"`
	AWS        AWSConfig        `json:"aws"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Mode            string        `json:"mode"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
	AutoMigrate    bool          `json:"auto_migrate"`
}

// SecurityConfig holds the HS256 secret for bearer tokens. Empty means header-based identity.
type SecurityConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

// LoggingConfig
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// OnboardingConfig tunes the overdue sweep and dashboard cache
type OnboardingConfig struct {
	SweepEnabled        bool          `json:"sweep_enabled"`
	SweepCron           string        `json:"sweep_cron"`
	SweepTimezone       string        `json:"sweep_timezone"`
	SweepTimeout        time.Duration `json:"sweep_timeout"`
	DashboardCacheTTL   time.Duration `json:"dashboard_cache_ttl"`
	RecentCompletedDays int           `json:"recent_completed_days"`
}

// AWSConfig
type AWSConfig struct {
	Region          string        `json:"region"`
	Endpoint        string        `json:"endpoint"`
	AccessKeyID     string        `json:"access_key_id"`
	SecretAccessKey string        `json:"secret_access_key"`
	UsePathStyle    bool          `json:"use_path_style"`
	SNSTopicARN     string        `json:"sns_topic_arn"`
	ExportBucket    string        `json:"export_bucket"`
	PresignExpiry   time.Duration `json:"presign_expiry"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "release",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "hr_portal",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    30 * time.Minute,
			AutoMigrate:    true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Onboarding: OnboardingConfig{
			SweepEnabled:        true,
			SweepCron:           "*/15 * * * *",
			SweepTimezone:       "UTC",
			SweepTimeout:        10 * time.Minute,
			DashboardCacheTTL:   time.Minute,
			RecentCompletedDays: 30,
		},
		AWS: AWSConfig{
			Region:        "eu-west-2",
			PresignExpiry: 15 * time.Minute,
		},
	}
}

// LoadConfig loads configuration from file and environment variables.
// A .env file in the working directory is loaded first when present.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	config := Default()

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config) error {
	setString(&config.Server.Host, "SERVER_HOST")
	setString(&config.Server.Mode, "GIN_MODE")
	setString(&config.Database.Host, "DATABASE_HOST")
	setString(&config.Database.User, "DATABASE_USER")
	setString(&config.Database.Password, "DATABASE_PASSWORD")
	setString(&config.Database.DBName, "DATABASE_DBNAME")
	setString(&config.Database.SSLMode, "DATABASE_SSLMODE")
	setString(&config.Security.JWTSecret, "JWT_SECRET")
	setString(&config.Logging.Level, "LOG_LEVEL")
	setString(&config.Logging.Format, "LOG_FORMAT")
	setString(&config.Onboarding.SweepCron, "ONBOARDING_SWEEP_CRON")
	setString(&config.Onboarding.SweepTimezone, "ONBOARDING_SWEEP_TIMEZONE")
	setString(&config.AWS.Region, "AWS_REGION")
	setString(&config.AWS.Endpoint, "AWS_ENDPOINT_URL")
	setString(&config.AWS.AccessKeyID, "AWS_ACCESS_KEY_ID")
	setString(&config.AWS.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	setString(&config.AWS.SNSTopicARN, "ONBOARDING_SNS_TOPIC_ARN")
	setString(&config.AWS.ExportBucket, "ONBOARDING_EXPORT_BUCKET")

	if err := setInt(&config.Server.Port, "SERVER_PORT"); err != nil {
		return err
	}
	if err := setInt(&config.Database.Port, "DATABASE_PORT"); err != nil {
		return err
	}
	if err := setInt(&config.Onboarding.RecentCompletedDays, "ONBOARDING_RECENT_COMPLETED_DAYS"); err != nil {
		return err
	}
	if err := setBool(&config.Database.AutoMigrate, "DATABASE_AUTO_MIGRATE"); err != nil {
		return err
	}
	if err := setBool(&config.Onboarding.SweepEnabled, "ONBOARDING_SWEEP_ENABLED"); err != nil {
		return err
	}
	if err := setBool(&config.AWS.UsePathStyle, "AWS_S3_USE_PATH_STYLE"); err != nil {
		return err
	}
	if err := setDuration(&config.Onboarding.DashboardCacheTTL, "ONBOARDING_DASHBOARD_CACHE_TTL"); err != nil {
		return err
	}
	return setDuration(&config.Onboarding.SweepTimeout, "ONBOARDING_SWEEP_TIMEOUT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host and name are required")
	}
	if c.Onboarding.DashboardCacheTTL < 0 {
		return fmt.Errorf("dashboard cache ttl cannot be negative")
	}
	if c.Onboarding.RecentCompletedDays <= 0 {
		return fmt.Errorf("recent completed days must be positive")
	}
	return nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
