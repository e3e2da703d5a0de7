// Package inject synthesizes keyboard input.
//
// Keyboard types text by pressing the keys a US layout would need, one code
// point at a time. Code points with no key on that layout are either pasted
// through the clipboard (when enabled) or rejected with ErrUnmappable.
package inject

import (
	"errors"
	"fmt"
)

// ErrNotAvailable is returned when key injection isn't supported on this platform.
var ErrNotAvailable = errors.New("key injection not available on this platform")

// ErrUnmappable is returned for text the keyboard has no key for.
var ErrUnmappable = errors.New("no key for character")

// Options configures a Keyboard.
type Options struct {
	// PasteFallback pastes text through the clipboard when it contains
	// characters that cannot be typed. The clipboard is overwritten.
	PasteFallback bool
}

// stroke is a key on the US layout, identified by its unshifted character.
type stroke struct {
	base  rune
	shift bool
}

var shifted = map[rune]rune{
	'~': '`', '!': '1', '@': '2', '#': '3', '$': '4', '%': '5',
	'^': '6', '&': '7', '*': '8', '(': '9', ')': '0', '_': '-',
	'+': '=', '{': '[', '}': ']', '|': '\\', ':': ';', '"': '\'',
	'<': ',', '>': '.', '?': '/',
}

const unshifted = "`1234567890-=[]\\;',./ \n\t"

// strokeFor returns the key press that types r.
func strokeFor(r rune) (stroke, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return stroke{base: r}, true
	case r >= 'A' && r <= 'Z':
		return stroke{base: r - 'A' + 'a', shift: true}, true
	}
	for _, u := range unshifted {
		if r == u {
			return stroke{base: r}, true
		}
	}
	if base, ok := shifted[r]; ok {
		return stroke{base: base, shift: true}, true
	}
	return stroke{}, false
}

// Typable reports an error wrapping ErrUnmappable for the first character
// of text that has no key.
func Typable(text string) error {
	for _, r := range text {
		if _, ok := strokeFor(r); !ok {
			return fmt.Errorf("%w: %q", ErrUnmappable, r)
		}
	}
	return nil
}
