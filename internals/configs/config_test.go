package configs

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("BUSINESS_TIMEZONE", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("DB_STATEMENT_TIMEOUT_MS", "2500")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg := Load()

	assert.Equal(t, EnvDevelopment, cfg.AppEnv)
	assert.Equal(t, "Africa/Luanda", cfg.BusinessTimezone)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 2500*time.Millisecond, cfg.DBStatementTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.DSN(), "statement_timeout=2500")
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.BusinessTimezone = "Africa/Luanda"
	cfg.OverdueSweepCron = "0 1 * * *"
	cfg.BlacklistCleanupCron = "@daily"
	cfg.JWTTTL, cfg.OTPTTL = time.Hour, time.Minute

	cfg.AppEnv = EnvProduction
	cfg.JWTSecret = ""
	require.Error(t, cfg.Validate())

	cfg.JWTSecret = "secret"
	require.NoError(t, cfg.Validate())

	cfg.OverdueSweepCron = "not a cron"
	assert.ErrorContains(t, cfg.Validate(), "OVERDUE_SWEEP_CRON")

	cfg.OverdueSweepCron = "0 1 * * *"
	cfg.BusinessTimezone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "BUSINESS_TIMEZONE")
}

func TestNewLoggerLevel(t *testing.T) {
	log := NewLogger(EnvProduction, "debug")
	assert.True(t, log.IsLevelEnabled(logrus.DebugLevel))

	log = NewLogger(EnvDevelopment, "nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
