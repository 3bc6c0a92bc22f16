// Package config loads the server configuration from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents lifecycle.yaml.
type Config struct {
	Addr       string   `yaml:"addr,omitempty"`
	InitNumber *float64 `yaml:"init_number,omitempty"`

	Session   SessionConfig   `yaml:"session"`
	Log       LogConfig       `yaml:"log"`
	Console   ConsoleConfig   `yaml:"console"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Websocket WebsocketConfig `yaml:"websocket"`

	// StateTTL is how long a rendered page waits for its websocket.
	StateTTL time.Duration `yaml:"state_ttl,omitempty"`
}

// SessionConfig names the cookie linking a page load to its websocket.
type SessionConfig struct {
	Name string `yaml:"name,omitempty"`
	// Secret authenticates the cookie. Empty means a random key per process.
	Secret string `yaml:"secret,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// ConsoleConfig controls the on-page diagnostic panel.
type ConsoleConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	Lines   int   `yaml:"lines,omitempty"`
}

// BroadcastConfig throttles title broadcasts.
type BroadcastConfig struct {
	Interval time.Duration `yaml:"interval,omitempty"`
	Burst    int           `yaml:"burst,omitempty"`
}

// WebsocketConfig limits websocket connections.
type WebsocketConfig struct {
	// MaxMessageSize is the largest client message accepted, -1 for no
	// limit.
	MaxMessageSize int64 `yaml:"max_message_size,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	enabled := true
	initNumber := 2.0
	return &Config{
		Addr:       ":8080",
		InitNumber: &initNumber,
		Session:    SessionConfig{Name: "_live"},
		Log:        LogConfig{Level: "info", Format: "text"},
		Console:    ConsoleConfig{Enabled: &enabled, Lines: 20},
		Broadcast:  BroadcastConfig{Interval: 100 * time.Millisecond, Burst: 8},
		Websocket:  WebsocketConfig{MaxMessageSize: 32768},
		StateTTL:   30 * time.Second,
	}
}

// Load reads the file at path and fills unset values from Default. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolve() {
	d := Default()
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = d.Addr
	}
	if c.InitNumber == nil {
		c.InitNumber = d.InitNumber
	}
	if c.Session.Name == "" {
		c.Session.Name = d.Session.Name
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Console.Enabled == nil {
		c.Console.Enabled = d.Console.Enabled
	}
	if c.Console.Lines == 0 {
		c.Console.Lines = d.Console.Lines
	}
	if c.Broadcast.Interval == 0 {
		c.Broadcast.Interval = d.Broadcast.Interval
	}
	if c.Broadcast.Burst == 0 {
		c.Broadcast.Burst = d.Broadcast.Burst
	}
	if c.Websocket.MaxMessageSize == 0 {
		c.Websocket.MaxMessageSize = d.Websocket.MaxMessageSize
	}
	if c.StateTTL == 0 {
		c.StateTTL = d.StateTTL
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}
	if c.Console.Lines < 0 {
		return fmt.Errorf("console lines must not be negative, got %d", c.Console.Lines)
	}
	if c.Broadcast.Interval < 0 || c.Broadcast.Burst < 0 {
		return fmt.Errorf("broadcast interval and burst must not be negative")
	}
	if c.Websocket.MaxMessageSize < -1 {
		return fmt.Errorf("websocket max message size must be -1 or more, got %d", c.Websocket.MaxMessageSize)
	}
	if c.StateTTL < 0 {
		return fmt.Errorf("state ttl must not be negative, got %s", c.StateTTL)
	}
	return nil
}

// Level parses the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return l, nil
}

// Seed returns the number both views start from.
func (c *Config) Seed() float64 {
	if c.InitNumber == nil {
		return 2
	}
	return *c.InitNumber
}

// ConsoleEnabled reports whether the on-page console is shown.
func (c *Config) ConsoleEnabled() bool {
	return c.Console.Enabled == nil || *c.Console.Enabled
}
