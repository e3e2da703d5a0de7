//go:build cgo && (linux || darwin || windows)

package inject

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"textreplacer/internal/keystroke"
)

func TestEveryStrokeHasAKeyCode(t *testing.T) {
	for r := rune(0x20); r < 0x7f; r++ {
		s, ok := strokeFor(r)
		if !assert.True(t, ok, "%q has no stroke", r) {
			continue
		}
		_, ok = codes[s.base]
		assert.True(t, ok, "%q (base %q) has no key code", r, s.base)
	}
	for _, r := range "\n\t" {
		_, ok := codes[r]
		assert.True(t, ok, "%q has no key code", r)
	}
}

func TestControlKeysHaveCodes(t *testing.T) {
	for _, k := range []keystroke.ControlKey{keystroke.KeyBackspace, keystroke.KeyEnter, keystroke.KeyTab, keystroke.KeySpace} {
		_, ok := controlCodes[k]
		assert.True(t, ok, "%s has no key code", k)
	}
}

func TestCanTypeHonoursPasteFallback(t *testing.T) {
	strict := &Keyboard{}
	assert.True(t, strict.CanType("by the way"))
	assert.False(t, strict.CanType("café"))

	pasting := &Keyboard{paste: true}
	assert.True(t, pasting.CanType("café"))
}
