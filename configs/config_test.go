package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfig_RefusesMissingEncryptionKey(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RefusesBadKeyLength(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "too-short")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RefusesMissingJWTSecret(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "0123456789abcdef")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postqueue_session", cfg.CookieName)
	assert.Equal(t, 30, cfg.ActionLimits["schedule_post"])
	assert.Equal(t, 10, cfg.ActionLimits["generate_content"])
	assert.Equal(t, 10, cfg.ActionLimits["connect_account"])
}

func TestLoadConfig_ActionLimitOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LIMIT_SCHEDULE_POST", "5")
	t.Setenv("LIMIT_GENERATE_CONTENT", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.ActionLimits["schedule_post"])
	// unparsable override keeps the default
	assert.Equal(t, 10, cfg.ActionLimits["generate_content"])
}
