// Package rules holds the immutable trigger → replacement table consulted by
// the replacement engine.
//
// A Table is built once from a Mapping and never mutated afterwards. Rules are
// ordered by trigger length (in runes), longest first, so that a trigger such
// as "im sorry" is always considered before its shorter suffix or prefix "im".
// Equal-length triggers keep the order in which they were inserted into the
// Mapping.
package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxTriggerLen is the longest trigger that can ever match. The engine keeps
// at most this many runes of typed input.
const MaxTriggerLen = 250

// ErrNoRules is returned when a table would be built from an empty mapping.
var ErrNoRules = errors.New("at least one replacement rule is required")

// ErrEmptyTrigger is returned when a trigger is empty after trimming whitespace.
var ErrEmptyTrigger = errors.New("trigger text cannot be empty")

// TriggerError describes an invalid trigger and its position in the mapping.
type TriggerError struct {
	Index   int
	Trigger string
	Err     error
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("rule %d (%q): %v", e.Index, e.Trigger, e.Err)
}

func (e *TriggerError) Unwrap() error {
	return e.Err
}

// Rule is a single trigger/replacement pair.
type Rule struct {
	Trigger     string `json:"trigger" yaml:"trigger" toml:"trigger"`
	Replacement string `json:"replacement" yaml:"replacement" toml:"replacement"`
}

// TriggerLen returns the trigger length in runes.
func (r Rule) TriggerLen() int {
	return utf8.RuneCountInString(r.Trigger)
}

// Mapping is an ordered set of rules keyed by trigger.
// Setting an existing trigger replaces its replacement and keeps its position.
type Mapping struct {
	rules []Rule
	index map[string]int
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Set adds or overrides a rule.
func (m *Mapping) Set(trigger, replacement string) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[trigger]; ok {
		m.rules[i].Replacement = replacement
		return
	}
	m.index[trigger] = len(m.rules)
	m.rules = append(m.rules, Rule{Trigger: trigger, Replacement: replacement})
}

// Merge copies every rule of src into m; src wins on identical triggers.
func (m *Mapping) Merge(src *Mapping) {
	if src == nil {
		return
	}
	for _, r := range src.rules {
		m.Set(r.Trigger, r.Replacement)
	}
}

// Get returns the replacement for trigger.
func (m *Mapping) Get(trigger string) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.index[trigger]
	if !ok {
		return "", false
	}
	return m.rules[i].Replacement, true
}

// Len returns the number of distinct triggers.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Rules returns the rules in insertion order.
func (m *Mapping) Rules() []Rule {
	if m == nil {
		return nil
	}
	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Table is the immutable, priority-ordered rule set.
type Table struct {
	rules  []Rule
	maxLen int
}

// New builds a table from m.
func New(m *Mapping) (*Table, error) {
	if m.Len() == 0 {
		return nil, ErrNoRules
	}

	ordered := m.Rules()
	for i, r := range ordered {
		if strings.TrimSpace(r.Trigger) == "" {
			return nil, &TriggerError{Index: i, Trigger: r.Trigger, Err: ErrEmptyTrigger}
		}
	}

	sortByPriority(ordered)

	return &Table{
		rules:  ordered,
		maxLen: ordered[0].TriggerLen(),
	}, nil
}

// FromMap builds a mapping from a plain map. Go maps carry no order, so
// triggers are inserted lexicographically.
func FromMap(src map[string]string) *Mapping {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := NewMapping()
	for _, k := range keys {
		m.Set(k, src[k])
	}
	return m
}

// sortByPriority orders rules longest trigger first. The sort is stable, so
// equal-length triggers keep insertion order.
func sortByPriority(rs []Rule) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].TriggerLen() > rs[j].TriggerLen()
	})
}

// Match returns the highest-priority rule whose trigger is a suffix of buffer.
func (t *Table) Match(buffer string) (Rule, bool) {
	for _, r := range t.rules {
		if strings.HasSuffix(buffer, r.Trigger) {
			return r, true
		}
	}
	return Rule{}, false
}

// Extends reports whether some matchable trigger begins with prefix.
// Triggers longer than MaxTriggerLen are never considered.
func (t *Table) Extends(prefix string) bool {
	if prefix == "" {
		return false
	}
	for _, r := range t.rules {
		if r.TriggerLen() > MaxTriggerLen {
			continue
		}
		if strings.HasPrefix(r.Trigger, prefix) {
			return true
		}
	}
	return false
}

// Rules returns a copy of the rules in match-priority order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}

// MaxTriggerLen returns the length in runes of the longest trigger.
func (t *Table) MaxTriggerLen() int {
	return t.maxLen
}
