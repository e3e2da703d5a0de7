//go:build cgo && (linux || darwin || windows)

package inject

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"

	"textreplacer/internal/keystroke"
)

// Keyboard injects key presses through keybd_event: a uinput virtual
// keyboard on Linux, CGEventPost on macOS, keybd_event on Windows.
// It is not safe for concurrent use.
type Keyboard struct {
	kb    keybd_event.KeyBonding
	paste bool
}

// New creates the virtual keyboard. On Linux it blocks while the device
// registers.
func New(opts Options) (*Keyboard, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("create virtual keyboard: %w", err)
	}
	if deviceSettle > 0 {
		time.Sleep(deviceSettle)
	}

	return &Keyboard{kb: kb, paste: opts.PasteFallback}, nil
}

// Tap presses and releases a control key.
func (k *Keyboard) Tap(key keystroke.ControlKey) error {
	code, ok := controlCodes[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnmappable, key)
	}
	return k.launch(code, false)
}

// Type types text. If a character has no key and paste fallback is enabled,
// the remainder of text is pasted instead.
func (k *Keyboard) Type(text string) error {
	for i, r := range text {
		s, ok := strokeFor(r)
		if !ok {
			if !k.paste {
				return fmt.Errorf("%w: %q", ErrUnmappable, r)
			}
			return k.pasteText(text[i:])
		}
		if err := k.launch(codes[s.base], s.shift); err != nil {
			return fmt.Errorf("type %q: %w", r, err)
		}
	}
	return nil
}

// CanType reports whether Type will accept text.
func (k *Keyboard) CanType(text string) bool {
	return k.paste || Typable(text) == nil
}

func (k *Keyboard) pasteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	k.kb.Clear()
	pasteModifier(&k.kb)
	k.kb.SetKeys(codes['v'])
	if err := k.kb.Launching(); err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	return nil
}

func (k *Keyboard) launch(code int, shift bool) error {
	k.kb.Clear()
	k.kb.HasSHIFT(shift)
	k.kb.SetKeys(code)
	return k.kb.Launching()
}
