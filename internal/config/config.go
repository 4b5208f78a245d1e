package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	UI      UIConfig      `mapstructure:"ui"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds backend API settings.
type ServerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SessionConfig controls credential persistence across runs.
type SessionConfig struct {
	Persist bool `mapstructure:"persist"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	DateFormat     string `mapstructure:"date_format"`
}

// LogConfig holds trace log settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Trace bool   `mapstructure:"trace"`
}

// Load reads configuration from file and env. Env var overrides use prefix OURNEST_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.timeout_seconds", 10)
	v.SetDefault("session.persist", true)
	v.SetDefault("ui.currency_symbol", "₹")
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "ournest", "ournest.log"))
	v.SetDefault("log.trace", false)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("OURNEST_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "ournest"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("OURNEST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// Used by the TUI settings view for non-sensitive preferences.
func Save(cfg Config) error {
	path := os.Getenv("OURNEST_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "ournest", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("server.base_url", cfg.Server.BaseURL)
	v.Set("server.timeout_seconds", cfg.Server.TimeoutSeconds)
	v.Set("session.persist", cfg.Session.Persist)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.trace", cfg.Log.Trace)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
