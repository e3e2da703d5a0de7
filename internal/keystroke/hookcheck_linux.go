//go:build cgo && linux

package keystroke

/*
#cgo LDFLAGS: -lX11 -lXtst
#include <X11/Xlib.h>
#include <X11/extensions/record.h>

static int has_record(Display *d) {
	int major = 0, minor = 0;
	return XRecordQueryVersion(d, &major, &minor);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"os"
)

// checkHook opens the X display libuiohook will hook and checks for the
// RECORD extension it listens through.
func checkHook() error {
	name := os.Getenv("DISPLAY")
	if name == "" {
		return errors.New("DISPLAY is not set; the keyboard hook needs an X11 or XWayland session")
	}
	d := C.XOpenDisplay(nil)
	if d == nil {
		return fmt.Errorf("cannot open X display %q", name)
	}
	defer C.XCloseDisplay(d)

	if C.has_record(d) == 0 {
		return fmt.Errorf("X display %q lacks the RECORD extension", name)
	}
	return nil
}
