//go:build cgo && linux

package inject

import (
	"fmt"
	"os"
	"time"
)

// deviceSettle is how long the kernel needs to announce a new uinput device
// before events sent to it are delivered.
const deviceSettle = 2 * time.Second

var uinputPaths = []string{"/dev/uinput", "/dev/input/uinput"}

// Available checks that a uinput device node exists and is writable.
func Available() (bool, string) {
	for _, p := range uinputPaths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			return false, fmt.Sprintf("cannot open %s: %v (add yourself to the input group or adjust udev rules)", p, err)
		}
		f.Close()
		return true, p
	}
	return false, "no uinput device; load the uinput kernel module"
}
