//go:build cgo && (linux || windows)

package inject

import (
	"github.com/micmonay/keybd_event"

	"textreplacer/internal/keystroke"
)

// Linux and Windows both address keys by PC scancode.
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
	'[': keybd_event.VK_LEFTBRACE, ']': keybd_event.VK_RIGHTBRACE,
	'\\': keybd_event.VK_BACKSLASH, ';': keybd_event.VK_SEMICOLON,
	'\'': keybd_event.VK_APOSTROPHE, ',': keybd_event.VK_COMMA,
	'.': keybd_event.VK_DOT, '/': keybd_event.VK_SLASH,
	' ': keybd_event.VK_SPACE, '\n': keybd_event.VK_ENTER, '\t': keybd_event.VK_TAB,
}

var controlCodes = map[keystroke.ControlKey]int{
	keystroke.KeyBackspace: keybd_event.VK_BACKSPACE,
	keystroke.KeyEnter:     keybd_event.VK_ENTER,
	keystroke.KeyTab:       keybd_event.VK_TAB,
	keystroke.KeySpace:     keybd_event.VK_SPACE,
}

func pasteModifier(kb *keybd_event.KeyBonding) {
	kb.HasCTRL(true)
}
