//go:build cgo && (linux || darwin || windows)

package keystroke

import (
	"testing"

	hook "github.com/robotn/gohook"
	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		ev   hook.Event
		key  Key
		ok   bool
	}{
		{"backspace press", hook.Event{Kind: hook.KeyHold, Keycode: vcBackspace}, KeyBackspace, true},
		{"enter press", hook.Event{Kind: hook.KeyHold, Keycode: vcEnter}, KeyEnter, true},
		{"keypad enter press", hook.Event{Kind: hook.KeyHold, Keycode: vcKPEnter}, KeyEnter, true},
		{"tab press", hook.Event{Kind: hook.KeyHold, Keycode: vcTab}, KeyTab, true},
		{"space press", hook.Event{Kind: hook.KeyHold, Keycode: vcSpace}, KeySpace, true},
		{"left arrow press", hook.Event{Kind: hook.KeyHold, Keycode: vcLeft}, KeyOther, true},
		{"home press", hook.Event{Kind: hook.KeyHold, Keycode: vcHome}, KeyOther, true},
		{"letter press", hook.Event{Kind: hook.KeyHold, Keycode: uint16(hook.Keycode["a"])}, nil, false},
		{"shift press", hook.Event{Kind: hook.KeyHold, Keycode: uint16(hook.Keycode["shift"])}, nil, false},
		{"letter typed", hook.Event{Kind: hook.KeyDown, Keychar: 'a'}, Character('a'), true},
		{"punctuation typed", hook.Event{Kind: hook.KeyDown, Keychar: '.'}, Character('.'), true},
		{"space typed", hook.Event{Kind: hook.KeyDown, Keychar: ' '}, nil, false},
		{"return typed", hook.Event{Kind: hook.KeyDown, Keychar: '\r'}, nil, false},
		{"backspace typed", hook.Event{Kind: hook.KeyDown, Keychar: '\b'}, nil, false},
		{"undefined char", hook.Event{Kind: hook.KeyDown, Keychar: charUndefined}, nil, false},
		{"release", hook.Event{Kind: hook.KeyUp, Keycode: vcBackspace}, nil, false},
		{"mouse press", hook.Event{Kind: hook.MouseHold}, KeyOther, true},
		{"mouse release", hook.Event{Kind: hook.MouseDown}, nil, false},
		{"mouse move", hook.Event{Kind: hook.MouseMove}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := decode(tt.ev)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestBackspaceKeycodeMatchesGohook(t *testing.T) {
	// gohook names the backspace scancode "delete" after the Mac key label.
	assert.Equal(t, vcBackspace, int(hook.Keycode["delete"]))
	assert.Equal(t, vcSpace, int(hook.Keycode["space"]))
	assert.Equal(t, vcLeft, int(hook.Keycode["left"]))
}
