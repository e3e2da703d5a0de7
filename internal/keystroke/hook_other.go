//go:build !cgo || !(linux || darwin || windows)

package keystroke

import (
	"context"
)

// StubSource is used where libuiohook cannot be built.
type StubSource struct {
	BaseSource
}

func newPlatformSource() Source {
	return &StubSource{}
}

// Available returns false on unsupported builds.
func (s *StubSource) Available() (bool, string) {
	return false, "keyboard hook requires cgo on linux, darwin or windows"
}

// Start returns an error on unsupported builds.
func (s *StubSource) Start(ctx context.Context) error {
	return ErrNotAvailable
}

// Stop is a no-op on unsupported builds.
func (s *StubSource) Stop() error {
	return nil
}
