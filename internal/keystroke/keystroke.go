// Package keystroke delivers global keyboard events to a single consumer.
//
// A Source subscribes to the operating system's keyboard hook and publishes
// one Event per key press on a channel, in the order the OS reported them.
// Each event is either a named control key or a typed character; see Key.
//
// Platform support:
//   - Linux (X11), macOS and Windows through libuiohook (github.com/robotn/gohook),
//     which needs cgo. macOS requires the Accessibility permission.
//   - Everything else gets a stub whose Start returns ErrNotAvailable.
package keystroke

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Source produces keyboard events.
type Source interface {
	// Start subscribes to keyboard events.
	Start(ctx context.Context) error

	// Stop releases the subscription and closes the Events channel.
	Stop() error

	// Events returns the channel events are delivered on. It is closed by Stop.
	Events() <-chan Event

	// Available returns true if keyboard events can be received
	// on this platform with current permissions.
	Available() (bool, string)

	// Dropped counts events discarded because the consumer fell behind.
	Dropped() uint64
}

// eventBuffer is the capacity of the delivery channel.
const eventBuffer = 1024

// BaseSource provides channel handling shared by platform implementations.
type BaseSource struct {
	mu      sync.RWMutex
	ch      chan Event
	running bool
	dropped atomic.Uint64
}

// Open creates a fresh delivery channel and marks the source running.
func (b *BaseSource) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return ErrAlreadyRunning
	}
	b.ch = make(chan Event, eventBuffer)
	b.running = true
	return nil
}

// Events returns the delivery channel.
func (b *BaseSource) Events() <-chan Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ch
}

// Emit delivers ev without blocking. Events arriving while the consumer is
// more than eventBuffer events behind are dropped and counted.
func (b *BaseSource) Emit(ev Event) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running {
		return false
	}
	select {
	case b.ch <- ev:
		return true
	default:
		b.dropped.Add(1)
		return false
	}
}

// Dropped returns how many events were discarded because the channel was full.
func (b *BaseSource) Dropped() uint64 {
	return b.dropped.Load()
}

// Close marks the source stopped and closes the delivery channel.
func (b *BaseSource) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}
	b.running = false
	close(b.ch)
}

// IsRunning returns the running state.
func (b *BaseSource) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

// New creates a Source for the current platform.
func New() Source {
	return newPlatformSource()
}

// ErrNotAvailable is returned when keyboard hooks aren't available.
var ErrNotAvailable = errors.New("keyboard hook not available on this platform")

// ErrAlreadyRunning is returned when Start is called while already running.
var ErrAlreadyRunning = errors.New("source already running")

// SimulatedSource is a source for testing that doesn't hook the real keyboard.
type SimulatedSource struct {
	BaseSource
}

// NewSimulated creates a source for testing.
func NewSimulated() *SimulatedSource {
	return &SimulatedSource{}
}

// Start opens the simulated source.
func (s *SimulatedSource) Start(ctx context.Context) error {
	return s.Open()
}

// Stop closes the simulated source.
func (s *SimulatedSource) Stop() error {
	s.Close()
	return nil
}

// Press simulates a single key press.
func (s *SimulatedSource) Press(k Key) bool {
	return s.Emit(Event{Key: k})
}

// Type simulates typing text one character at a time. Space, newline and tab
// are reported as control keys, the way a hook reports them.
func (s *SimulatedSource) Type(text string) {
	for _, k := range KeysFor(text) {
		s.Press(k)
	}
}

// Available returns true (simulated is always available).
func (s *SimulatedSource) Available() (bool, string) {
	return true, "simulated source (for testing)"
}
