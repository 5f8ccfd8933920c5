package web

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/poi-xref/internal/config"
)

// Config represents the web server configuration
type Config struct {
	Server   ServerConfig       `json:"server"`
	Auth     AuthConfig         `json:"auth"`
	Features FeatureConfig      `json:"features"`
	Match    config.MatchConfig `json:"match"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port            int           `json:"port"`
	Host            string        `json:"host"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	AllowedOrigin   string        `json:"allowed_origin"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"api_key"`
}

// FeatureConfig contains feature toggles
type FeatureConfig struct {
	ExportEnabled bool `json:"export_enabled"`
	MaxRecords    int  `json:"max_records"`
}

// LoadConfig loads configuration from a JSON file on top of the defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return cfg, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            config.GetEnvInt("PORT", 8080),
			Host:            config.GetEnv("HOST", "0.0.0.0"),
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigin:   config.GetEnv("CORS_ORIGIN", "*"),
		},
		Auth: AuthConfig{
			Enabled: config.GetEnv("POI_API_KEY", "") != "",
			APIKey:  config.GetEnv("POI_API_KEY", ""),
		},
		Features: FeatureConfig{
			ExportEnabled: true,
			MaxRecords:    config.GetEnvInt("POI_MAX_RECORDS", 50000),
		},
		Match: config.DefaultMatchConfig(),
	}
}
