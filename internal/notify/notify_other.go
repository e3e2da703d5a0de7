//go:build !linux

package notify

// DBus is only available on Linux.
type DBus struct{}

// Connect always fails on this platform.
func Connect() (*DBus, error) {
	return nil, ErrNotAvailable
}

func (d *DBus) Send(Message) error { return ErrNotAvailable }
func (d *DBus) Close() error       { return nil }
