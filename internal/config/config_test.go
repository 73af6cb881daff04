package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "*/15 * * * *", cfg.Onboarding.SweepCron)
	assert.Equal(t, time.Minute, cfg.Onboarding.DashboardCacheTTL)
	assert.Equal(t, 30, cfg.Onboarding.RecentCompletedDays)
	assert.Empty(t, cfg.Security.JWTSecret)
}

func TestLoadConfigFileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": 9090},
		"database": {"host": "db.internal", "db_name": "people"},
		"onboarding": {"sweep_cron": "0 * * * *", "recent_completed_days": 7}
	}`), 0o600))

	t.Setenv("DATABASE_HOST", "db.override")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ONBOARDING_DASHBOARD_CACHE_TTL", "90s")
	t.Setenv("ONBOARDING_SWEEP_ENABLED", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, "people", cfg.Database.DBName)
	assert.Equal(t, "0 * * * *", cfg.Onboarding.SweepCron)
	assert.Equal(t, 7, cfg.Onboarding.RecentCompletedDays)
	assert.Equal(t, 90*time.Second, cfg.Onboarding.DashboardCacheTTL)
	assert.False(t, cfg.Onboarding.SweepEnabled)
	assert.Equal(t, "s3cret", cfg.Security.JWTSecret)
	assert.Equal(t, "postgres://"+cfg.Database.User+":@db.override:5432/people?sslmode=disable", cfg.Database.GetDatabaseURL())
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ONBOARDING_EXPORT_BUCKET=hr-exports\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ONBOARDING_EXPORT_BUCKET") })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "hr-exports", cfg.AWS.ExportBucket)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("SERVER_PORT", "eighty")
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "SERVER_PORT")

	t.Setenv("SERVER_PORT", "70000")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "out of range")
}
