package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "local")
	t.Setenv("CORS_ORIGINS", " https://a.test, ,https://b.test")
	t.Setenv("MONITOR_RETENTION_DAYS", "not-a-number")
	t.Setenv("REPORT_MAX_BODY", "1024")

	cfg := LoadConfig()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 30, cfg.Monitor.RetentionDays)
	assert.Equal(t, int64(1024), cfg.Server.ReportMaxBytes)
}

func TestJWTSecretHasNoDefault(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	assert.Empty(t, LoadConfig().Auth.JWTSecret)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", DBName: "events", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5433/events?sslmode=disable", db.DSN())
}
