package keystroke

import (
	"fmt"
	"time"
)

// Key is either a ControlKey or a Character. The set of implementations is
// closed; consumers switch on the concrete type.
type Key interface {
	isKey()
	String() string
}

// ControlKey is a named key that carries no printable text of its own.
type ControlKey uint8

const (
	KeyOther     ControlKey = iota // Types nothing but may move the caret: arrows, Home/End, Page keys, mouse presses
	KeyBackspace                   // Backspace/Delete backward
	KeyEnter                       // Enter/Return
	KeyTab                         // Tab
	KeySpace                       // Space bar
)

func (ControlKey) isKey() {}

func (k ControlKey) String() string {
	switch k {
	case KeyBackspace:
		return "backspace"
	case KeyEnter:
		return "enter"
	case KeyTab:
		return "tab"
	case KeySpace:
		return "space"
	default:
		return "other"
	}
}

// Text returns the literal text a control key produces, if any.
func (k ControlKey) Text() (string, bool) {
	switch k {
	case KeyEnter:
		return "\n", true
	case KeyTab:
		return "\t", true
	case KeySpace:
		return " ", true
	default:
		return "", false
	}
}

// Character is a typed code point.
type Character rune

func (Character) isKey() {}

func (c Character) String() string {
	return fmt.Sprintf("%q", rune(c))
}

// Event is a single key press.
type Event struct {
	Key Key
	// When is the time the OS reported the press. Zero means unknown.
	When time.Time
}

// KeysFor converts text into the key presses that would type it.
func KeysFor(text string) []Key {
	keys := make([]Key, 0, len(text))
	for _, r := range text {
		switch r {
		case ' ':
			keys = append(keys, KeySpace)
		case '\n':
			keys = append(keys, KeyEnter)
		case '\t':
			keys = append(keys, KeyTab)
		case '\b':
			keys = append(keys, KeyBackspace)
		default:
			keys = append(keys, Character(r))
		}
	}
	return keys
}
