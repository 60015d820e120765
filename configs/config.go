package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	PostgresURI        string
	RedisURI           string
	FrontendURL        string
	R2                 R2
	EncryptionKey      string
	JWTSecret          string
	CookieName         string
	ActionLimits       map[string]int
}

// Per-action admission ceilings for a 60 minute window. Overridable per
// action via LIMIT_<ACTION> env vars, e.g. LIMIT_GENERATE_CONTENT=20.
var defaultActionLimits = map[string]int{
	"generate_content": 10,
	"schedule_post":    30,
	"connect_account":  10,
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", ""),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CookieName:    getEnv("COOKIE_NAME", "postqueue_session"),
		ActionLimits:  loadActionLimits(),
	}

	// There is deliberately no fallback key. A process without an
	// operator-supplied key must not come up and encrypt credentials
	// under a guessable default.
	if cfg.EncryptionKey == "" {
		return nil, errors.New("ENCRYPTION_KEY is not set")
	}
	switch len(cfg.EncryptionKey) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("ENCRYPTION_KEY must be 16, 24 or 32 bytes, got %d", len(cfg.EncryptionKey))
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	return cfg, nil
}

func loadActionLimits() map[string]int {
	limits := make(map[string]int, len(defaultActionLimits))
	for action, max := range defaultActionLimits {
		limits[action] = max
	}
	for action := range limits {
		envKey := "LIMIT_" + strings.ToUpper(action)
		if v := os.Getenv(envKey); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limits[action] = n
			}
		}
	}
	return limits
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
