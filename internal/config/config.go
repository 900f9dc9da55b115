// Package config provides YAML-based configuration loading for Swapyard.
package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the top-level Swapyard configuration, loaded from swapyard.yaml.
type Config struct {
	Matching MatchingConfig `yaml:"matching"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Notify   NotifyConfig   `yaml:"notify"`
	Log      LogConfig      `yaml:"log"`
}

// MatchingConfig tunes the trade graph.
type MatchingConfig struct {
	RadiusMiles    float64 `yaml:"radius_miles"`
	MaxCycleLength int     `yaml:"max_cycle_length"`
	Tolerance      float64 `yaml:"tolerance"`
	// AutoValue assigns heuristic values to unvalued items at registration.
	AutoValue bool `yaml:"auto_value"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig selects the trade ledger backend. An empty driver disables
// the ledger.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // sqlite or mysql
	Path     string `yaml:"path"`   // sqlite file
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Enabled reports whether a ledger database is configured.
func (d DatabaseConfig) Enabled() bool { return d.Driver != "" }

// ScheduleConfig holds periodic matching settings.
type ScheduleConfig struct {
	// MatchCron is a standard 5-field cron expression. Empty disables
	// scheduled rounds.
	MatchCron string `yaml:"match_cron"`
}

// NotifyConfig holds chat destinations for round summaries.
type NotifyConfig struct {
	Slack   ChatConfig `yaml:"slack"`
	Discord ChatConfig `yaml:"discord"`
}

// ChatConfig holds credentials for one chat platform.
type ChatConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether both token and channel are set.
func (c ChatConfig) Enabled() bool { return c.BotToken != "" && c.ChannelID != "" }

// LogConfig selects the zap logger level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Default returns a configuration with every default applied, used when no
// config file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in default values.
func (c *Config) applyDefaults() {
	if c.Matching.RadiusMiles == 0 {
		c.Matching.RadiusMiles = 15
	}
	if c.Matching.MaxCycleLength == 0 {
		c.Matching.MaxCycleLength = 5
	}
	if c.Matching.Tolerance == 0 {
		c.Matching.Tolerance = 0.2
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			c.Database.Path = "swapyard.db"
		}
	case "mysql":
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.Name == "" {
			c.Database.Name = "swapyard"
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// validate checks that all fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Matching.RadiusMiles < 0 || math.IsNaN(c.Matching.RadiusMiles) {
		errs = append(errs, "matching.radius_miles must not be negative")
	}
	if c.Matching.MaxCycleLength < 2 {
		errs = append(errs, "matching.max_cycle_length must be at least 2")
	}
	if c.Matching.Tolerance < 0 || c.Matching.Tolerance >= 1 {
		errs = append(errs, "matching.tolerance must be in [0, 1)")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case "", "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q must be sqlite or mysql", c.Database.Driver))
	}
	if c.Schedule.MatchCron != "" {
		if _, err := cron.ParseStandard(c.Schedule.MatchCron); err != nil {
			errs = append(errs, fmt.Sprintf("schedule.match_cron: %v", err))
		}
	}
	if partial(c.Notify.Slack) {
		errs = append(errs, "notify.slack needs both bot_token and channel_id")
	}
	if partial(c.Notify.Discord) {
		errs = append(errs, "notify.discord needs both bot_token and channel_id")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be json or console", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func partial(c ChatConfig) bool {
	return (c.BotToken == "") != (c.ChannelID == "")
}
