// Package config handles configuration loading, validation, and hot reload
// for textreplacer.
//
// Replacement rules come from a config file (TOML, JSON or YAML) and from
// inline trigger=replacement mappings given on the command line. Inline
// mappings are applied after the file and override it on identical triggers.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"textreplacer/internal/logging"
	"textreplacer/internal/rules"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Replacements maps triggers to replacement text.
	Replacements map[string]string `toml:"replacements" json:"replacements" yaml:"replacements"`

	// Engine configuration for key injection.
	Engine EngineConfig `toml:"engine" json:"engine" yaml:"engine"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Stats configuration for usage counting.
	Stats StatsConfig `toml:"stats" json:"stats" yaml:"stats"`

	// Notify configuration for desktop notifications.
	Notify NotifyConfig `toml:"notify" json:"notify" yaml:"notify"`

	// Inline holds mappings given on the command line, in the order given.
	Inline []rules.Rule `toml:"-" json:"-" yaml:"-"`
}

// EngineConfig holds replacement engine settings.
type EngineConfig struct {
	// PasteFallback pastes replacements containing characters the virtual
	// keyboard cannot type. The clipboard is overwritten when it is used.
	PasteFallback bool `toml:"paste_fallback" json:"paste_fallback" yaml:"paste_fallback"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the output format: text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is where logs go: stdout, stderr, file or both.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file when Output is file or both.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// StatsConfig holds usage statistics configuration.
type StatsConfig struct {
	// Enabled turns on per-trigger replacement counting.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// NotifyConfig holds desktop notification configuration.
type NotifyConfig struct {
	// Enabled shows a notification on startup and on failed reloads.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`
}

// DefaultConfig returns a configuration with sensible defaults and no rules.
func DefaultConfig() *Config {
	return &Config{
		Version:      Version,
		Replacements: map[string]string{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Stats: StatsConfig{
			Path: filepath.Join(PlatformDataDir(), "stats.db"),
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// Environment variables read by ApplyEnvOverrides.
const (
	EnvLogLevel      = "TEXTREPLACER_LOG_LEVEL"
	EnvStats         = "TEXTREPLACER_STATS"
	EnvPasteFallback = "TEXTREPLACER_PASTE_FALLBACK"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Boolean variables that do not parse are reported and left
// unapplied.
func (c *Config) ApplyEnvOverrides() error {
	var errs ValidationErrors

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}

	boolEnv := func(name string, dst *bool) {
		v := os.Getenv(name)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, ValidationError{Field: name, Message: fmt.Sprintf("not a boolean: %q", v)})
			return
		}
		*dst = b
	}
	boolEnv(EnvStats, &c.Stats.Enabled)
	boolEnv(EnvPasteFallback, &c.Engine.PasteFallback)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c

	clone.Replacements = make(map[string]string, len(c.Replacements))
	for k, v := range c.Replacements {
		clone.Replacements[k] = v
	}
	clone.Inline = append([]rules.Rule(nil), c.Inline...)

	return &clone
}

// Mapping returns every rule in source order: file rules by trigger, then
// inline rules in the order given. Later entries override earlier ones.
func (c *Config) Mapping() *rules.Mapping {
	m := c.FileMapping()
	m.Merge(c.InlineMapping())
	return m
}

// FileMapping returns the rules read from the config file.
func (c *Config) FileMapping() *rules.Mapping {
	return rules.FromMap(c.Replacements)
}

// InlineMapping returns the command line rules.
func (c *Config) InlineMapping() *rules.Mapping {
	m := rules.NewMapping()
	for _, r := range c.Inline {
		m.Set(r.Trigger, r.Replacement)
	}
	return m
}

// Table builds the rule table.
func (c *Config) Table() (*rules.Table, error) {
	return rules.New(c.Mapping())
}

// LoggerConfig converts the logging section into a logging.Config.
func (c *Config) LoggerConfig() (*logging.Config, error) {
	cfg := logging.DefaultConfig()

	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}

	cfg.Level = level
	cfg.Format = format
	if c.Logging.Output != "" {
		cfg.Output = c.Logging.Output
	}
	if c.Logging.FilePath != "" {
		cfg.FilePath = c.Logging.FilePath
	}
	return cfg, nil
}

// StatsPath returns the statistics database path.
func (c *Config) StatsPath() string {
	if c.Stats.Path != "" {
		return c.Stats.Path
	}
	return filepath.Join(PlatformDataDir(), "stats.db")
}
