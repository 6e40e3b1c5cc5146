package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIConfig holds Quercle API client settings.
//
// The API key is resolved once, at load time: an explicit value in the config
// file (or passed by the embedding application) wins over the QUERCLE_API_KEY
// environment variable. An unset key is not an error here; the client fails
// lazily on the first call that needs it.
type APIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // Go duration string, e.g. "30s"; empty means no client timeout
}

// TimeoutDuration parses the configured timeout. Empty or unparsable values
// mean no client timeout; Validate has already rejected the unparsable ones.
func (c APIConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	Output string `yaml:"output"` // stdout, stderr, or a file path
}

// TracerConfig holds OpenTelemetry tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout" or "noop"
}

// ServerConfig holds MCP server settings for `quercle serve`.
type ServerConfig struct {
	Transport string `yaml:"transport"` // "stdio" or "sse"
	Addr      string `yaml:"addr"`      // listen address for sse
}

// Config is the top-level application configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Logger LoggerConfig `yaml:"logger"`
	Tracer TracerConfig `yaml:"tracer"`
	Server ServerConfig `yaml:"server"`
}

// DefaultBaseURL is the production Quercle API endpoint.
const DefaultBaseURL = "https://api.quercle.com"

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		Server: ServerConfig{
			Transport: "stdio",
			Addr:      ":8321",
		},
	}
}

// Load reads a YAML config file and applies env var overrides.
// A missing file is not an error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps QUERCLE_* env vars to config fields. An explicit
// api_key in the file takes precedence over the environment; everything else
// is environment-wins, matching the usual twelve-factor expectation.
func ApplyEnvOverrides(cfg *Config) {
	if cfg.API.APIKey == "" {
		cfg.API.APIKey = os.Getenv("QUERCLE_API_KEY")
	}
	if v := os.Getenv("QUERCLE_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("QUERCLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.API.Timeout = v
		}
	}
	if v := os.Getenv("QUERCLE_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("QUERCLE_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("QUERCLE_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("QUERCLE_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("QUERCLE_SERVER_TRANSPORT"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("QUERCLE_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// Validate checks the configuration for inconsistencies.
func Validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != "" {
		d, err := time.ParseDuration(cfg.API.Timeout)
		if err != nil {
			return fmt.Errorf("api.timeout %q is not a duration: %w", cfg.API.Timeout, err)
		}
		if d < 0 {
			return fmt.Errorf("api.timeout must not be negative")
		}
	}
	switch strings.ToLower(cfg.Logger.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown logger.level %q", cfg.Logger.Level)
	}
	switch cfg.Server.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unknown server.transport %q (want stdio or sse)", cfg.Server.Transport)
	}
	return nil
}
