//go:build cgo && (linux || darwin || windows)

package keystroke

import (
	"context"

	hook "github.com/robotn/gohook"
)

// charUndefined is what libuiohook reports as the text of keys that type nothing.
const charUndefined = 0xFFFF

// libuiohook virtual key codes (VC_* in iohook.h). gohook's Keycode table
// has no entry for some of them, backspace included.
const (
	vcBackspace = 0x000E
	vcTab       = 0x000F
	vcEnter     = 0x001C
	vcSpace     = 0x0039
	vcKPEnter   = 0x0E1C
	vcHome      = 0x0E47
	vcPageUp    = 0x0E49
	vcEnd       = 0x0E4F
	vcPageDown  = 0x0E51
	vcUp        = 0xE048
	vcLeft      = 0xE04B
	vcRight     = 0xE04D
	vcDown      = 0xE050
)

// HookSource receives global keyboard events through libuiohook.
type HookSource struct {
	BaseSource
	cancel context.CancelFunc
	done   chan struct{}
}

func newPlatformSource() Source {
	return &HookSource{}
}

// Available checks what libuiohook needs on this platform: an X display
// with the RECORD extension on Linux, the Accessibility permission on macOS
// and an interactive session on Windows.
func (h *HookSource) Available() (bool, string) {
	if err := checkHook(); err != nil {
		return false, err.Error()
	}
	return true, "libuiohook keyboard hook"
}

// Start installs the global hook and begins forwarding events.
func (h *HookSource) Start(ctx context.Context) error {
	if err := h.Open(); err != nil {
		return err
	}

	raw := hook.Start()

	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})
	go h.forward(ctx, raw)

	return nil
}

func (h *HookSource) forward(ctx context.Context, raw chan hook.Event) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-raw:
			if !ok {
				return
			}
			if key, ok := decode(ev); ok {
				h.Emit(Event{Key: key, When: ev.When})
			}
		}
	}
}

// Stop removes the global hook and closes the event channel.
func (h *HookSource) Stop() error {
	if !h.IsRunning() {
		return nil
	}

	hook.End()
	if h.cancel != nil {
		h.cancel()
	}
	if h.done != nil {
		<-h.done
	}
	h.Close()

	return nil
}

// decode maps a libuiohook event onto a Key. Presses (KeyHold) name the
// control keys and the keys that move the caret; typed events (KeyDown)
// carry the character. Whitespace and backspace also produce a typed event,
// which is skipped so each key is reported once. Other presses, modifiers
// included, are dropped: a letter's press is followed by its typed event.
// A mouse button press may move the caret and is reported as KeyOther.
func decode(ev hook.Event) (Key, bool) {
	switch ev.Kind {
	case hook.KeyHold:
		switch ev.Keycode {
		case vcBackspace:
			return KeyBackspace, true
		case vcEnter, vcKPEnter:
			return KeyEnter, true
		case vcTab:
			return KeyTab, true
		case vcSpace:
			return KeySpace, true
		case vcUp, vcDown, vcLeft, vcRight, vcHome, vcEnd, vcPageUp, vcPageDown:
			return KeyOther, true
		}
		return nil, false
	case hook.KeyDown:
		r := ev.Keychar
		switch r {
		case 0, charUndefined, ' ', '\t', '\r', '\n', '\b', 0x7f:
			return nil, false
		}
		return Character(r), true
	case hook.MouseHold:
		return KeyOther, true
	}
	return nil, false
}
