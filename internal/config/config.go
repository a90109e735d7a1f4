package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	RequestTimeout     time.Duration
	DatabaseURL        string
	DBMaxConns         int32
	DBMinConns         int32
	JWTSecret          string
	JWTAccessTTL       time.Duration
	CORSOrigins        []string
	RateLimitRPM       int
	SweepRateLimitRPM  int
	SiteRootID         string
	QuarantineID       string
	RetentionDays      int
	DisplayDays        int
	SweepSchedule      string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:         int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:         int32(getInt("DB_MIN_CONNS", 2)),
		JWTSecret:          strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTAccessTTL:       getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:       getInt("RATE_LIMIT_RPM", 100),
		SweepRateLimitRPM:  getInt("SWEEP_RATE_LIMIT_RPM", 5),
		SiteRootID:         getEnv("SITE_ROOT_ID", "site"),
		QuarantineID:       getEnv("QUARANTINE_CONTAINER_ID", "marked-for-deletion"),
		RetentionDays:      getInt("RETENTION_DAYS", 30),
		DisplayDays:        getInt("DISPLAY_DAYS", 90),
		SweepSchedule:      getEnv("SWEEP_SCHEDULE", "0 3 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if strings.TrimSpace(c.SiteRootID) == "" {
		return fmt.Errorf("SITE_ROOT_ID cannot be empty")
	}

	if strings.TrimSpace(c.QuarantineID) == "" {
		return fmt.Errorf("QUARANTINE_CONTAINER_ID cannot be empty")
	}

	if c.RetentionDays < 1 {
		return fmt.Errorf("RETENTION_DAYS must be at least 1")
	}

	if c.DisplayDays < 1 {
		return fmt.Errorf("DISPLAY_DAYS must be at least 1")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
