package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapping(pairs ...string) *Mapping {
	m := NewMapping()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

func TestNewRejectsEmptyMapping(t *testing.T) {
	_, err := New(NewMapping())
	assert.ErrorIs(t, err, ErrNoRules)

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrNoRules)
}

func TestNewRejectsBlankTrigger(t *testing.T) {
	tests := []struct {
		name    string
		trigger string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tab and newline", "\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(mapping("btw", "by the way", tt.trigger, "x"))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEmptyTrigger)

			var te *TriggerError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, 1, te.Index)
		})
	}
}

func TestTableOrdersLongestFirst(t *testing.T) {
	table, err := New(mapping(
		"im", "I am",
		"btw", "by the way",
		"im sorry", "I apologize",
		"omg", "oh my god",
		"x", "ex",
	))
	require.NoError(t, err)

	var triggers []string
	for _, r := range table.Rules() {
		triggers = append(triggers, r.Trigger)
	}

	// Equal-length triggers keep insertion order.
	assert.Equal(t, []string{"im sorry", "btw", "omg", "im", "x"}, triggers)
	assert.Equal(t, 8, table.MaxTriggerLen())
	assert.Equal(t, 5, table.Len())
}

func TestTableOrdersByRunesNotBytes(t *testing.T) {
	table, err := New(mapping("ééé", "e3", "abcd", "a4"))
	require.NoError(t, err)

	rs := table.Rules()
	assert.Equal(t, "abcd", rs[0].Trigger)
	assert.Equal(t, "ééé", rs[1].Trigger)
}

func TestMatchLongestSuffixWins(t *testing.T) {
	table, err := New(mapping("im", "I am", "im sorry", "I apologize"))
	require.NoError(t, err)

	r, ok := table.Match("im sorry")
	require.True(t, ok)
	assert.Equal(t, "I apologize", r.Replacement)

	r, ok = table.Match("well im")
	require.True(t, ok)
	assert.Equal(t, "I am", r.Replacement)

	_, ok = table.Match("imp")
	assert.False(t, ok)

	_, ok = table.Match("")
	assert.False(t, ok)
}

func TestMatchSuffixInsideWord(t *testing.T) {
	table, err := New(mapping("btw", "by the way"))
	require.NoError(t, err)

	r, ok := table.Match("xxbtw")
	require.True(t, ok)
	assert.Equal(t, "btw", r.Trigger)
}

func TestExtends(t *testing.T) {
	long := strings.Repeat("a", MaxTriggerLen+1)
	table, err := New(mapping("im sorry", "I apologize", "btw", "by the way", long, "never"))
	require.NoError(t, err)

	assert.True(t, table.Extends("im "))
	assert.True(t, table.Extends("im sorry"))
	assert.False(t, table.Extends("im sorry "))
	assert.False(t, table.Extends("btw "))
	assert.False(t, table.Extends(""))
	assert.False(t, table.Extends("aaa"), "triggers beyond the backtrack cap are ignored")
}

func TestMappingLastWriteWins(t *testing.T) {
	m := mapping("a", "1", "b", "2")
	m.Set("a", "3")

	assert.Equal(t, 2, m.Len())
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", v)
	assert.Equal(t, "a", m.Rules()[0].Trigger, "override keeps the original position")
}

func TestMappingMerge(t *testing.T) {
	base := mapping("btw", "by the way", "omg", "oh my god")
	base.Merge(mapping("omg", "oh my gosh", "ty", "thank you"))

	require.Equal(t, 3, base.Len())
	v, _ := base.Get("omg")
	assert.Equal(t, "oh my gosh", v)

	base.Merge(nil)
	assert.Equal(t, 3, base.Len())
}

func TestFromMapIsDeterministic(t *testing.T) {
	src := map[string]string{"zz": "last", "aa": "first", "mm": "middle"}

	for i := 0; i < 10; i++ {
		rs := FromMap(src).Rules()
		require.Len(t, rs, 3)
		assert.Equal(t, []string{"aa", "mm", "zz"}, []string{rs[0].Trigger, rs[1].Trigger, rs[2].Trigger})
	}
	assert.Zero(t, FromMap(nil).Len())
}

func TestRulesReturnsCopy(t *testing.T) {
	table, err := New(mapping("btw", "by the way"))
	require.NoError(t, err)

	rs := table.Rules()
	rs[0].Replacement = "mutated"

	r, ok := table.Match("btw")
	require.True(t, ok)
	assert.Equal(t, "by the way", r.Replacement)
}
