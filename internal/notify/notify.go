// Package notify shows desktop notifications.
//
// On Linux notifications go to org.freedesktop.Notifications on the session
// bus. Elsewhere, or when no notification daemon is running, messages are
// dropped.
package notify

import (
	"errors"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
)

// AppName is the application name shown by the notification daemon.
const AppName = "textreplacer"

// ErrNotAvailable is returned by Connect when there is no notification
// service to talk to.
var ErrNotAvailable = errors.New("desktop notifications not available")

// Urgency is the freedesktop urgency level.
type Urgency byte

const (
	Low      Urgency = 0
	Normal   Urgency = 1
	Critical Urgency = 2
)

// Message is one notification.
type Message struct {
	Summary string
	Body    string
	Urgency Urgency
	Timeout time.Duration // zero leaves it to the server
}

// Sender delivers notifications.
type Sender interface {
	Send(m Message) error
	Close() error
}

// Nop discards every message.
type Nop struct{}

func (Nop) Send(Message) error { return nil }
func (Nop) Close() error       { return nil }

// New returns a Sender for the session. When disabled or when no service is
// reachable it returns Nop, so callers never need to check.
func New(enabled bool, log *slog.Logger) Sender {
	if !enabled {
		return Nop{}
	}
	if log == nil {
		log = slog.Default()
	}

	s, err := Connect()
	if err != nil {
		log.Debug("notifications disabled", "error", err)
		return Nop{}
	}
	return s
}

// hints builds the Notify hints dictionary.
func hints(m Message) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(m.Urgency)),
	}
}

// expireTimeout converts m.Timeout to the milliseconds Notify expects; -1
// means the server default.
func expireTimeout(m Message) int32 {
	if m.Timeout <= 0 {
		return -1
	}
	return int32(m.Timeout / time.Millisecond)
}
