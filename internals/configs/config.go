package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is built once in main and passed to every component.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DBUser             string
	DBPassword         string
	DBHost             string
	DBPort             string
	DBName             string
	DBSSLMode          string
	DBStatementTimeout time.Duration

	JWTSecret string
	JWTTTL    time.Duration
	OTPTTL    time.Duration

	BusinessTimezone string

	OverdueSweepCron      string
	BlacklistCleanupCron  string
	TokenBlacklistTTLDays int

	RequestTimeout time.Duration
	RedisAddr      string
	AllowedOrigins []string
}

// =======================
// ENV LOADER
// =======================
func LoadEnv(log logrus.FieldLogger) {
	if os.Getenv("RAILWAY_ENVIRONMENT") != "" {
		log.Info("running in Railway, using system env")
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system env")
		return
	}
	log.Info(".env file loaded")
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// plain numbers are read as milliseconds
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

// Load reads the process environment. Call LoadEnv first when a .env file is wanted.
func Load() *Config {
	cfg := &Config{
		AppEnv:   strings.ToLower(GetEnv("APP_ENV", EnvDevelopment)),
		Port:     GetEnv("PORT", "3000"),
		LogLevel: GetEnv("LOG_LEVEL", "info"),

		DBUser:             GetEnv("DB_USER"),
		DBPassword:         GetEnv("DB_PASSWORD"),
		DBHost:             GetEnv("DB_HOST", "localhost"),
		DBPort:             GetEnv("DB_PORT", "5432"),
		DBName:             GetEnv("DB_NAME"),
		DBSSLMode:          GetEnv("DB_SSLMODE", "require"),
		DBStatementTimeout: getDuration("DB_STATEMENT_TIMEOUT_MS", 3*time.Second),

		JWTSecret: GetEnv("JWT_SECRET"),
		JWTTTL:    getDuration("JWT_TTL", time.Hour),
		OTPTTL:    getDuration("OTP_TTL", 5*time.Minute),

		BusinessTimezone: GetEnv("BUSINESS_TIMEZONE", "Africa/Luanda"),

		OverdueSweepCron:      GetEnv("OVERDUE_SWEEP_CRON", "0 1 * * *"),
		BlacklistCleanupCron:  GetEnv("BLACKLIST_CLEANUP_CRON", "30 3 * * *"),
		TokenBlacklistTTLDays: getInt("TOKEN_BLACKLIST_TTL_DAYS", 7),

		RequestTimeout: getDuration("REQUEST_TIMEOUT", 5*time.Second),
		RedisAddr:      GetEnv("REDIS_ADDR"),
	}

	for _, o := range strings.Split(GetEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg
}

func (c *Config) IsProduction() bool { return c.AppEnv == EnvProduction }

// Location returns the business timezone used for due dates and day boundaries.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.BusinessTimezone)
}

func (c *Config) Validate() error {
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", c.BusinessTimezone, err)
	}
	for name, spec := range map[string]string{
		"OVERDUE_SWEEP_CRON":     c.OverdueSweepCron,
		"BLACKLIST_CLEANUP_CRON": c.BlacklistCleanupCron,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}
	if c.JWTTTL <= 0 || c.OTPTTL <= 0 {
		return fmt.Errorf("JWT_TTL and OTP_TTL must be positive")
	}
	return nil
}

// DSN keeps statement_timeout aligned with the request timeout guard.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=letrus&options=-c%%20statement_timeout=%d",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
		c.DBStatementTimeout.Milliseconds(),
	)
}
