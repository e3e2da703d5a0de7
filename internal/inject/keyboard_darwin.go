//go:build cgo && darwin

package inject

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>
*/
import "C"

import (
	"github.com/micmonay/keybd_event"

	"textreplacer/internal/keystroke"
)

const deviceSettle = 0

// macOS virtual key codes follow the ANSI layout, not PC scancodes.
var codes = map[rune]int{
	'a': keybd_event.VK_A, 'b': keybd_event.VK_B, 'c': keybd_event.VK_C,
	'd': keybd_event.VK_D, 'e': keybd_event.VK_E, 'f': keybd_event.VK_F,
	'g': keybd_event.VK_G, 'h': keybd_event.VK_H, 'i': keybd_event.VK_I,
	'j': keybd_event.VK_J, 'k': keybd_event.VK_K, 'l': keybd_event.VK_L,
	'm': keybd_event.VK_M, 'n': keybd_event.VK_N, 'o': keybd_event.VK_O,
	'p': keybd_event.VK_P, 'q': keybd_event.VK_Q, 'r': keybd_event.VK_R,
	's': keybd_event.VK_S, 't': keybd_event.VK_T, 'u': keybd_event.VK_U,
	'v': keybd_event.VK_V, 'w': keybd_event.VK_W, 'x': keybd_event.VK_X,
	'y': keybd_event.VK_Y, 'z': keybd_event.VK_Z,
	'1': keybd_event.VK_1, '2': keybd_event.VK_2, '3': keybd_event.VK_3,
	'4': keybd_event.VK_4, '5': keybd_event.VK_5, '6': keybd_event.VK_6,
	'7': keybd_event.VK_7, '8': keybd_event.VK_8, '9': keybd_event.VK_9,
	'0': keybd_event.VK_0,
	'`': keybd_event.VK_GRAVE, '-': keybd_event.VK_MINUS, '=': keybd_event.VK_EQUAL,
	'[': keybd_event.VK_LeftBracket, ']': keybd_event.VK_RightBracket,
	'\\': keybd_event.VK_BACKSLASH, ';': keybd_event.VK_SEMICOLON,
	'\'': keybd_event.VK_Quote, ',': keybd_event.VK_COMMA,
	'.': keybd_event.VK_Period, '/': keybd_event.VK_SLASH,
	' ': keybd_event.VK_SPACE, '\n': keybd_event.VK_ENTER, '\t': keybd_event.VK_TAB,
}

var controlCodes = map[keystroke.ControlKey]int{
	keystroke.KeyBackspace: keybd_event.VK_DELETE,
	keystroke.KeyEnter:     keybd_event.VK_ENTER,
	keystroke.KeyTab:       keybd_event.VK_TAB,
	keystroke.KeySpace:     keybd_event.VK_SPACE,
}

// Paste is Cmd+V.
func pasteModifier(kb *keybd_event.KeyBonding) {
	kb.HasSuper(true)
}

// Available checks the Accessibility permission CGEventPost needs.
func Available() (bool, string) {
	if C.AXIsProcessTrusted() == 0 {
		return false, "Accessibility permission not granted"
	}
	return true, "CGEventPost"
}
