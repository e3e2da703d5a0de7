//go:build cgo && windows

package inject

const deviceSettle = 0

// Available always succeeds: keybd_event needs no permission.
func Available() (bool, string) {
	return true, "user32 keybd_event"
}
