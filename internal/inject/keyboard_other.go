//go:build !cgo || !(linux || darwin || windows)

package inject

import (
	"textreplacer/internal/keystroke"
)

// Keyboard is unavailable on this build.
type Keyboard struct{}

// New returns ErrNotAvailable on this build.
func New(opts Options) (*Keyboard, error) {
	return nil, ErrNotAvailable
}

// Available reports that injection is unsupported.
func Available() (bool, string) {
	return false, "key injection requires cgo on linux, darwin or windows"
}

// Tap returns ErrNotAvailable.
func (k *Keyboard) Tap(key keystroke.ControlKey) error {
	return ErrNotAvailable
}

// Type returns ErrNotAvailable.
func (k *Keyboard) Type(text string) error {
	return ErrNotAvailable
}

// CanType reports false.
func (k *Keyboard) CanType(text string) bool {
	return false
}
