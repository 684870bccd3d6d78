package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment variables overriding the config file
const EnvPrefix = "PENLIVE_"

// Config holds all configuration for penwatch
type Config struct {
	API     APIConfig     `koanf:"api"`
	Auth    AuthConfig    `koanf:"auth"`
	Live    LiveConfig    `koanf:"live"`
	Logging LoggingConfig `koanf:"logging"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// APIConfig points at the dashboard backend
type APIConfig struct {
	BaseURL            string        `koanf:"base_url"`
	WSBaseURL          string        `koanf:"ws_base_url"`
	Timeout            time.Duration `koanf:"timeout"`
	InsecureSkipVerify bool          `koanf:"insecure_skip_verify"`
}

// AuthConfig holds login credentials and where the session token is kept
type AuthConfig struct {
	Username  string `koanf:"username"`
	Password  string `koanf:"password"`
	TokenFile string `koanf:"token_file"`
}

// LiveConfig tunes the live channels
type LiveConfig struct {
	MaxReconnectAttempts int           `koanf:"max_reconnect_attempts"`
	ReconnectBase        time.Duration `koanf:"reconnect_base"`
	MaxDelay             time.Duration `koanf:"max_delay"`
	HandshakeTimeout     time.Duration `koanf:"handshake_timeout"`
	ChartWindow          int           `koanf:"chart_window"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig holds the prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
	Port    int  `koanf:"port"`
}

// LoadConfig loads the defaults, then the TOML file at configPath when one is given, then
// PENLIVE_ environment variables.
func LoadConfig(configPath string) (*Config, error) {
	cfg := defaultConfig()

	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			WeaklyTypedInput: true,
			Result:           cfg,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// envKey maps PENLIVE_LIVE_MAX__DELAY to live.max_delay. A few short names are kept for the
// variables the web dashboard used.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))

	switch s {
	case "api_base_url":
		return "api.base_url"
	case "ws_base_url":
		return "api.ws_base_url"
	case "log_level":
		return "logging.level"
	default:
		s = strings.ReplaceAll(s, "__", "%UNDERSCORE%")
		s = strings.ReplaceAll(s, "_", ".")
		s = strings.ReplaceAll(s, "%UNDERSCORE%", "_")
		return s
	}
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			WSBaseURL: "ws://localhost:8000",
			Timeout:   10 * time.Second,
		},
		Auth: AuthConfig{
			TokenFile: "",
		},
		Live: LiveConfig{
			MaxReconnectAttempts: 5,
			ReconnectBase:        1 * time.Second,
			MaxDelay:             30 * time.Second,
			HandshakeTimeout:     10 * time.Second,
			ChartWindow:          20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9091,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validateURL("api.base_url", c.API.BaseURL, "http", "https"); err != nil {
		return err
	}
	if err := validateURL("api.ws_base_url", c.API.WSBaseURL, "ws", "wss"); err != nil {
		return err
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got: %s", c.API.Timeout)
	}

	if c.Live.MaxReconnectAttempts < 0 {
		return fmt.Errorf("live.max_reconnect_attempts must not be negative, got: %d", c.Live.MaxReconnectAttempts)
	}
	if c.Live.ReconnectBase <= 0 {
		return fmt.Errorf("live.reconnect_base must be positive, got: %s", c.Live.ReconnectBase)
	}
	if c.Live.MaxDelay < c.Live.ReconnectBase {
		return fmt.Errorf("live.max_delay (%s) must not be less than live.reconnect_base (%s)",
			c.Live.MaxDelay, c.Live.ReconnectBase)
	}
	if c.Live.HandshakeTimeout <= 0 {
		return fmt.Errorf("live.handshake_timeout must be positive, got: %s", c.Live.HandshakeTimeout)
	}
	if c.Live.ChartWindow < 1 {
		return fmt.Errorf("live.chart_window must be at least 1, got: %d", c.Live.ChartWindow)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be either 'json' or 'console', got: %s", c.Logging.Format)
	}

	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got: %d", c.Metrics.Port)
	}

	return nil
}

func validateURL(key, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	for _, scheme := range schemes {
		if u.Scheme == scheme {
			return nil
		}
	}
	return fmt.Errorf("%s must use one of the schemes %s, got: %s", key, strings.Join(schemes, ", "), raw)
}
