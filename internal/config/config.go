package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the application configuration.
type Config struct {
	ServerPort  int
	DatabaseURL string
	AppEnv      string

	JWTSecret string
	// JWTSecretGenerated is true when no secret was configured and a random
	// one was created for this process. Tokens will not survive a restart.
	JWTSecretGenerated bool
	TokenTTL           time.Duration
	BcryptCost         int

	AllowedOrigins []string

	LogLevel  string
	LogFormat string

	EventRetention     time.Duration
	EventPruneSchedule string
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", portStr)
	}

	cfg := &Config{
		ServerPort:         port,
		DatabaseURL:        databaseURL(),
		AppEnv:             getEnv("APP_ENV", "development"),
		AllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		EventPruneSchedule: getEnv("EVENT_PRUNE_SCHEDULE", "@daily"),
	}

	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.EventRetention, err = getDuration("EVENT_RETENTION", 30*24*time.Hour); err != nil {
		return nil, err
	}

	costStr := getEnv("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost))
	cfg.BcryptCost, err = strconv.Atoi(costStr)
	if err != nil || cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid BCRYPT_COST %q: must be between %d and %d", costStr, bcrypt.MinCost, bcrypt.MaxCost)
	}

	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: must be console or json", cfg.LogFormat)
	}

	if _, err := cron.ParseStandard(cfg.EventPruneSchedule); err != nil {
		return nil, fmt.Errorf("invalid EVENT_PRUNE_SCHEDULE %q: %w", cfg.EventPruneSchedule, err)
	}

	cfg.JWTSecret = getEnv("JWT_SECRET", os.Getenv("JWT_SECRET_KEY"))
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set when APP_ENV=production")
		}
		if cfg.JWTSecret, err = randomSecret(); err != nil {
			return nil, err
		}
		cfg.JWTSecretGenerated = true
	}

	return cfg, nil
}

// databaseURL prefers DATABASE_URL and falls back to a bare DATABASE_PATH.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	if p := os.Getenv("DATABASE_PATH"); p != "" {
		return "sqlite://" + p
	}
	return "sqlite://./tasks.db"
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, raw)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Helper to get an environment variable with a default value. Empty values
// count as unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
