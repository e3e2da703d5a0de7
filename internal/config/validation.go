package config

import (
	"errors"
	"fmt"
	"strings"

	"textreplacer/internal/inject"
	"textreplacer/internal/logging"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// IsConfigError reports whether err came from reading or validating
// configuration rather than from running.
func IsConfigError(err error) bool {
	var ves ValidationErrors
	var pe *ParseError
	return errors.As(err, &ves) || errors.As(err, &pe)
}

// Validate checks the configuration. It reports every problem found.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateRules(c)...)
	errs = append(errs, validateLogging(&c.Logging)...)

	if c.Stats.Enabled && c.StatsPath() == "" {
		errs = append(errs, ValidationError{Field: "stats.path", Message: "required when stats are enabled"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateRules(c *Config) ValidationErrors {
	var errs ValidationErrors

	m := c.Mapping()
	if m.Len() == 0 {
		return append(errs, ValidationError{
			Field:   "replacements",
			Message: "no replacement rules; add some to the config file or pass --map",
		})
	}

	for _, r := range m.Rules() {
		field := "replacements." + r.Trigger
		if strings.TrimSpace(r.Trigger) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("replacements[%q]", r.Trigger), Message: "trigger text cannot be empty"})
			continue
		}
		if c.Engine.PasteFallback {
			continue
		}
		if err := inject.Typable(r.Replacement); err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%v; enable engine.paste_fallback to paste it instead", err),
			})
		}
	}
	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	if _, err := logging.ParseLevel(l.Level); err != nil {
		errs = append(errs, ValidationError{Field: "logging.level", Message: err.Error()})
	}
	if _, err := logging.ParseFormat(l.Format); err != nil {
		errs = append(errs, ValidationError{Field: "logging.format", Message: err.Error()})
	}

	switch strings.ToLower(l.Output) {
	case "", "stdout", "stderr", "file", "both":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("unknown output %q (want stdout, stderr, file or both)", l.Output),
		})
	}
	return errs
}
