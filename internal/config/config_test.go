package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		v := newViper(map[string]any{
			"SONARR_URL":     "http://sonarr:8989/",
			"SONARR_API_KEY": "secret",
		})

		cfg, err := FromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "http://sonarr:8989", cfg.SonarrURL)
		assert.Equal(t, "secret", cfg.SonarrAPIKey)
		assert.Equal(t, "sonarr", cfg.SonarrName)
		assert.Equal(t, 30*time.Second, cfg.SonarrTimeout)
		assert.Equal(t, "127.0.0.1:4200", cfg.Addr())
		assert.Equal(t, "/mcp", cfg.MCPPath)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "sonarr_mcp.log", cfg.LogFile)
	})

	t.Run("overrides", func(t *testing.T) {
		v := newViper(map[string]any{
			"SONARR_URL":             "https://tv.example.com",
			"SONARR_API_KEY":         "secret",
			"SONARR_NAME":            "Anime",
			"SONARR_MCP_HOST":        "0.0.0.0",
			"SONARR_MCP_PORT":        9000,
			"SONARR_MCP_PATH":        "rpc",
			"SONARR_TIMEOUT_SECONDS": 5,
			"LOG_LEVEL":              "debug",
			"LOG_FILE":               "",
		})

		cfg, err := FromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "anime", cfg.SonarrName)
		assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
		assert.Equal(t, "/rpc", cfg.MCPPath)
		assert.Equal(t, 5*time.Second, cfg.SonarrTimeout)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Empty(t, cfg.LogFile)
	})

	t.Run("missing url", func(t *testing.T) {
		_, err := FromViper(newViper(map[string]any{"SONARR_API_KEY": "secret"}))
		assert.True(t, errors.Is(err, ErrMissingURL))
	})

	t.Run("missing api key", func(t *testing.T) {
		_, err := FromViper(newViper(map[string]any{"SONARR_URL": "http://sonarr"}))
		assert.True(t, errors.Is(err, ErrMissingAPIKey))
	})

	t.Run("invalid port", func(t *testing.T) {
		_, err := FromViper(newViper(map[string]any{
			"SONARR_URL":      "http://sonarr",
			"SONARR_API_KEY":  "secret",
			"SONARR_MCP_PORT": 70000,
		}))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "SONARR_MCP_PORT")
	})
}

func TestMaskedURL(t *testing.T) {
	cfg := &Config{SonarrURL: "http://sonarr.internal.example.com:8989"}
	assert.Equal(t, "http://sonarr.intern...", cfg.MaskedURL())

	cfg.SonarrURL = "http://sonarr"
	assert.Equal(t, "http://sonarr", cfg.MaskedURL())
}
