//go:build linux

package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod      = notificationsName + ".Notify"
)

// DBus sends notifications over the session bus. Each message replaces the
// previous one so repeated reload failures do not stack up.
type DBus struct {
	conn *dbus.Conn
	obj  dbus.BusObject

	mu     sync.Mutex
	lastID uint32
}

// Connect opens a private session bus connection and checks that a
// notification server owns its name.
func Connect() (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}

	var owned bool
	err = conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, notificationsName).Store(&owned)
	if err != nil || !owned {
		conn.Close()
		if err == nil {
			err = fmt.Errorf("%s has no owner", notificationsName)
		}
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}

	return &DBus{
		conn: conn,
		obj:  conn.Object(notificationsName, notificationsPath),
	}, nil
}

// Send shows m.
func (d *DBus) Send(m Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var id uint32
	call := d.obj.Call(notifyMethod, 0,
		AppName,
		d.lastID,
		"",
		m.Summary,
		m.Body,
		[]string{},
		hints(m),
		expireTimeout(m),
	)
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	d.lastID = id
	return nil
}

// Close closes the bus connection.
func (d *DBus) Close() error {
	return d.conn.Close()
}
