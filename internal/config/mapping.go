package config

import (
	"fmt"
	"strings"

	"textreplacer/internal/rules"
)

// ParseError reports input that could not be parsed.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseMapping parses an inline "trigger=replacement" rule. The text is split
// at the first '='; the trigger is trimmed, the replacement kept verbatim.
func ParseMapping(item string) (rules.Rule, error) {
	trigger, replacement, ok := strings.Cut(item, "=")
	if !ok {
		return rules.Rule{}, &ParseError{
			Source: "--map",
			Err:    fmt.Errorf("invalid entry %q, expected format: trigger=replacement", item),
		}
	}

	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return rules.Rule{}, &ParseError{Source: "--map", Err: rules.ErrEmptyTrigger}
	}
	return rules.Rule{Trigger: trigger, Replacement: replacement}, nil
}

// ParseMappings parses every item, stopping at the first error.
func ParseMappings(items []string) ([]rules.Rule, error) {
	out := make([]rules.Rule, 0, len(items))
	for _, item := range items {
		r, err := ParseMapping(item)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
