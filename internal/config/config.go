// Package config provides layered configuration loading.
//
// Precedence: environment > config file > defaults. Everything is resolved
// once at startup; a bad URL or missing credential aborts before the server
// accepts its first request.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"github.com/basher83/zammad-mcp/internal/output"
)

// Transport selects how the server talks to its host.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// Keyring coordinates for the stored API token.
const (
	KeyringService = "zammad-mcp"
	KeyringUser    = "http_token"
)

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceKeyring Source = "keyring"
)

// Config holds the resolved configuration.
type Config struct {
	// Remote API settings
	URL         string `env:"ZAMMAD_URL" yaml:"url"`
	HTTPToken   string `env:"ZAMMAD_HTTP_TOKEN" yaml:"http_token"`
	OAuth2Token string `env:"ZAMMAD_OAUTH2_TOKEN" yaml:"oauth2_token"`
	Username    string `env:"ZAMMAD_USERNAME" yaml:"username"`
	Password    string `env:"ZAMMAD_PASSWORD" yaml:"password"`

	// Transport settings
	Transport Transport `env:"MCP_TRANSPORT" yaml:"transport"`
	Host      string    `env:"MCP_HOST" yaml:"host"`
	Port      int       `env:"MCP_PORT" yaml:"port"`

	// Behavior settings
	CharacterLimit    int     `env:"ZAMMAD_MCP_CHARACTER_LIMIT" yaml:"character_limit"`
	TimeoutSeconds    int     `env:"ZAMMAD_TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	RequestsPerSecond float64 `env:"ZAMMAD_RPS" yaml:"requests_per_second"`
	LogLevel          string  `env:"LOG_LEVEL" yaml:"log_level"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]Source `env:"-" yaml:"-"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Transport:      TransportStdio,
		CharacterLimit: 25000,
		TimeoutSeconds: 30,
		LogLevel:       "INFO",
		Sources:        make(map[string]Source),
	}
}

// Load resolves configuration from defaults, the optional YAML file named by
// ZAMMAD_MCP_CONFIG, and the environment, in ascending precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("ZAMMAD_MCP_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	before := *cfg
	if err := env.Parse(cfg); err != nil {
		return nil, output.ErrConfig("parsing environment: " + err.Error())
	}
	cfg.markChanged(&before, SourceEnv)

	if !cfg.hasCredential() {
		if token, err := keyring.Get(KeyringService, KeyringUser); err == nil && token != "" {
			cfg.HTTPToken = token
			cfg.Sources["http_token"] = SourceKeyring
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return output.ErrConfigHint("reading config file failed", err.Error())
	}
	before := *c
	if err := yaml.Unmarshal(data, c); err != nil {
		return output.ErrConfigHint("parsing config file failed", err.Error())
	}
	c.markChanged(&before, SourceFile)
	return nil
}

// markChanged records provenance for every field that differs from before.
func (c *Config) markChanged(before *Config, src Source) {
	fields := map[string][2]any{
		"url":                 {before.URL, c.URL},
		"http_token":          {before.HTTPToken, c.HTTPToken},
		"oauth2_token":        {before.OAuth2Token, c.OAuth2Token},
		"username":            {before.Username, c.Username},
		"password":            {before.Password, c.Password},
		"transport":           {before.Transport, c.Transport},
		"host":                {before.Host, c.Host},
		"port":                {before.Port, c.Port},
		"character_limit":     {before.CharacterLimit, c.CharacterLimit},
		"timeout_seconds":     {before.TimeoutSeconds, c.TimeoutSeconds},
		"requests_per_second": {before.RequestsPerSecond, c.RequestsPerSecond},
		"log_level":           {before.LogLevel, c.LogLevel},
	}
	for key, pair := range fields {
		if pair[0] != pair[1] {
			c.Sources[key] = src
		}
	}
}

func (c *Config) hasCredential() bool {
	return c.HTTPToken != "" || c.OAuth2Token != "" || (c.Username != "" && c.Password != "")
}

// Validate checks the resolved configuration, failing fast with hints.
func (c *Config) Validate() error {
	if c.URL == "" {
		return output.ErrConfigHint("Zammad URL is required",
			"set ZAMMAD_URL, e.g. https://your-instance.zammad.com")
	}
	c.URL = NormalizeURL(c.URL)

	if !c.hasCredential() {
		if os.Getenv("ZAMMAD_TOKEN") != "" {
			return output.ErrConfigHint(
				"Found ZAMMAD_TOKEN but this server expects ZAMMAD_HTTP_TOKEN",
				"Please rename your environment variable to ZAMMAD_HTTP_TOKEN")
		}
		return output.ErrConfigHint("Authentication credentials required",
			"set ZAMMAD_HTTP_TOKEN, ZAMMAD_OAUTH2_TOKEN, or ZAMMAD_USERNAME and ZAMMAD_PASSWORD")
	}

	switch c.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.Port == 0 {
			return output.ErrConfigHint("HTTP transport requires a port", "set MCP_PORT")
		}
		if c.Host == "" {
			c.Host = "127.0.0.1"
			c.Sources["host"] = SourceDefault
		}
	default:
		return output.ErrConfigHint(
			fmt.Sprintf("invalid transport type: %s", c.Transport),
			"MCP_TRANSPORT must be one of: stdio, http")
	}

	if c.CharacterLimit <= 0 {
		return output.ErrConfig("character limit must be positive")
	}
	if c.TimeoutSeconds <= 0 {
		return output.ErrConfig("timeout must be positive")
	}
	return nil
}

// NormalizeURL trims trailing slashes and ensures the /api/v1 suffix the
// Zammad REST API is served under.
func NormalizeURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasSuffix(u, "/api/v1") {
		u += "/api/v1"
	}
	return u
}

// SlogLevel maps the configured LOG_LEVEL to a slog.Level. Invalid values
// fall back to INFO with a warning, matching the env contract.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		slog.Warn("invalid LOG_LEVEL, defaulting to INFO",
			"value", c.LogLevel, "valid", "DEBUG, INFO, WARNING, ERROR, CRITICAL")
		return slog.LevelInfo
	}
}
