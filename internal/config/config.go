package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrMissingURL is returned when SONARR_URL is not set
	ErrMissingURL = errors.New("SONARR_URL is required")
	// ErrMissingAPIKey is returned when SONARR_API_KEY is not set
	ErrMissingAPIKey = errors.New("SONARR_API_KEY is required")
)

// Config holds all application configuration
type Config struct {
	// Sonarr
	SonarrURL     string
	SonarrAPIKey  string
	SonarrName    string
	SonarrTimeout time.Duration

	// MCP server
	Host    string
	Port    int
	MCPPath string

	// Logging
	LogLevel string
	LogFile  string // empty disables file output
}

// Addr returns the listen address of the MCP HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SONARR_NAME", "sonarr")
	v.SetDefault("SONARR_TIMEOUT_SECONDS", 30)
	v.SetDefault("SONARR_MCP_HOST", "127.0.0.1")
	v.SetDefault("SONARR_MCP_PORT", 4200)
	v.SetDefault("SONARR_MCP_PATH", "/mcp")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.GetViper()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = v.ReadInConfig()

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	name := strings.ToLower(strings.TrimSpace(v.GetString("SONARR_NAME")))
	if name == "" {
		name = "sonarr"
	}

	// LOG_FILE set to an empty string disables the file output, so only
	// fall back to the default name when the key was never provided.
	logFile := name + "_mcp.log"
	if v.IsSet("LOG_FILE") {
		logFile = v.GetString("LOG_FILE")
	}

	config := &Config{
		SonarrURL:     strings.TrimRight(strings.TrimSpace(v.GetString("SONARR_URL")), "/"),
		SonarrAPIKey:  strings.TrimSpace(v.GetString("SONARR_API_KEY")),
		SonarrName:    name,
		SonarrTimeout: time.Duration(v.GetInt("SONARR_TIMEOUT_SECONDS")) * time.Second,

		Host:    v.GetString("SONARR_MCP_HOST"),
		Port:    v.GetInt("SONARR_MCP_PORT"),
		MCPPath: v.GetString("SONARR_MCP_PATH"),

		LogLevel: v.GetString("LOG_LEVEL"),
		LogFile:  logFile,
	}

	// Validate required fields
	if config.SonarrURL == "" {
		return nil, ErrMissingURL
	}
	if config.SonarrAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.SonarrTimeout <= 0 {
		return nil, fmt.Errorf("SONARR_TIMEOUT_SECONDS must be positive, got %d", v.GetInt("SONARR_TIMEOUT_SECONDS"))
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("SONARR_MCP_PORT out of range: %d", config.Port)
	}
	if !strings.HasPrefix(config.MCPPath, "/") {
		config.MCPPath = "/" + config.MCPPath
	}

	return config, nil
}

// MaskedURL returns the first characters of the Sonarr URL for logging
func (c *Config) MaskedURL() string {
	if len(c.SonarrURL) <= 20 {
		return c.SonarrURL
	}
	return c.SonarrURL[:20] + "..."
}
