//go:build cgo && darwin

package keystroke

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>
*/
import "C"

import "errors"

func checkHook() error {
	if C.AXIsProcessTrusted() == 0 {
		return errors.New("Accessibility permission not granted (System Settings > Privacy & Security > Accessibility)")
	}
	return nil
}
