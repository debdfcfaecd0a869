package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sellerlegend/go-sellerlegend/internal/config"
)

func TestEnvVars(t *testing.T) {
	t.Run("reads credentials from the environment", func(t *testing.T) {
		t.Setenv("SELLERLEGEND_CLIENT_ID", "client-1")
		t.Setenv("SELLERLEGEND_CLIENT_SECRET", "secret-1")
		t.Setenv("SELLERLEGEND_BASE_URL", "https://staging.sellerlegend.com")
		t.Setenv("SELLERLEGEND_REDIRECT_URI", "http://localhost:3000/callback")

		cfg := config.New()
		require.Equal(t, "client-1", cfg.GetClientID())
		require.Equal(t, "secret-1", cfg.GetClientSecret())
		require.Equal(t, "https://staging.sellerlegend.com", cfg.GetBaseURL())
		require.Equal(t, "http://localhost:3000/callback", cfg.GetRedirectURI())
	})

	t.Run("defaults the base URL to production", func(t *testing.T) {
		t.Setenv("SELLERLEGEND_BASE_URL", "")

		require.Equal(t, "https://app.sellerlegend.com", config.New().GetBaseURL())
	})

	t.Run("parses transport overrides", func(t *testing.T) {
		t.Setenv("SELLERLEGEND_TIMEOUT", "60")
		t.Setenv("SELLERLEGEND_MAX_RETRIES", "5")
		t.Setenv("SELLERLEGEND_BACKOFF_FACTOR", "0.5")

		cfg := config.New()
		require.Equal(t, time.Minute, cfg.GetTimeout())
		require.Equal(t, 5, cfg.GetMaxRetries())
		require.Equal(t, 0.5, cfg.GetBackoffFactor())
	})

	t.Run("unset transport values report sentinels", func(t *testing.T) {
		t.Setenv("SELLERLEGEND_TIMEOUT", "")
		t.Setenv("SELLERLEGEND_MAX_RETRIES", "")
		t.Setenv("SELLERLEGEND_BACKOFF_FACTOR", "")

		cfg := config.New()
		require.Zero(t, cfg.GetTimeout())
		require.Equal(t, -1, cfg.GetMaxRetries())
		require.Zero(t, cfg.GetBackoffFactor())
	})

	t.Run("zero retries is kept, not treated as unset", func(t *testing.T) {
		t.Setenv("SELLERLEGEND_MAX_RETRIES", "0")

		require.Zero(t, config.New().GetMaxRetries())
	})

	t.Run("unparsable numbers fall back to sentinels", func(t *testing.T) {
		t.Setenv("SELLERLEGEND_TIMEOUT", "soon")
		t.Setenv("SELLERLEGEND_BACKOFF_FACTOR", "-1")

		cfg := config.New()
		require.Zero(t, cfg.GetTimeout())
		require.Zero(t, cfg.GetBackoffFactor())
	})
}
