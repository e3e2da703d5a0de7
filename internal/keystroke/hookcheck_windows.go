//go:build cgo && windows

package keystroke

import (
	"errors"

	"golang.org/x/sys/windows"
)

// checkHook checks for an interactive desktop; low-level keyboard hooks
// need no extra permission but are never called in a service session.
func checkHook() error {
	var session uint32
	if err := windows.ProcessIdToSessionId(windows.GetCurrentProcessId(), &session); err != nil {
		return err
	}
	if session == 0 {
		return errors.New("running in session 0, which has no interactive desktop")
	}
	return nil
}
