package inject

import (
	"sync"
	"unicode"

	"textreplacer/internal/keystroke"
)

// Action is one call made on a Recorder.
type Action struct {
	Tap   keystroke.ControlKey
	Text  string
	IsTap bool // Tap call rather than Type call
}

// Recorder is an in-memory sink that records injected actions and keeps a
// simulated line of on-screen text. It never touches the real keyboard.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
	screen  []rune
	calls   int
	failAt  int
	failErr error
	strict  bool
}

// NewRecorder creates a recorder whose screen starts with text.
func NewRecorder(text string) *Recorder {
	return &Recorder{screen: []rune(text)}
}

// FailAt makes the n-th call (1-based) and every call after it return err.
func (r *Recorder) FailAt(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAt = n
	r.failErr = err
}

// RejectUnmappable makes Type fail, as a keyboard without paste fallback
// does, for text containing characters with no key.
func (r *Recorder) RejectUnmappable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strict = true
}

// CanType reports whether Type would accept text.
func (r *Recorder) CanType(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.strict || Typable(text) == nil
}

// Tap records a key press and applies it to the screen.
func (r *Recorder) Tap(key keystroke.ControlKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fail(); err != nil {
		return err
	}
	r.actions = append(r.actions, Action{Tap: key, IsTap: true})
	r.apply(key)
	return nil
}

// Type records typed text and appends it to the screen.
func (r *Recorder) Type(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fail(); err != nil {
		return err
	}
	if r.strict {
		if err := Typable(text); err != nil {
			return err
		}
	}
	r.actions = append(r.actions, Action{Text: text})
	r.screen = append(r.screen, []rune(text)...)
	return nil
}

// Echo applies a key the user pressed to the screen without recording it.
func (r *Recorder) Echo(k keystroke.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch k := k.(type) {
	case keystroke.ControlKey:
		r.apply(k)
	case keystroke.Character:
		if unicode.IsPrint(rune(k)) || unicode.IsSpace(rune(k)) {
			r.screen = append(r.screen, rune(k))
		}
	}
}

func (r *Recorder) apply(k keystroke.ControlKey) {
	if k == keystroke.KeyBackspace {
		if len(r.screen) > 0 {
			r.screen = r.screen[:len(r.screen)-1]
		}
		return
	}
	if text, ok := k.Text(); ok {
		r.screen = append(r.screen, []rune(text)...)
	}
}

func (r *Recorder) fail() error {
	r.calls++
	if r.failErr != nil && r.calls >= r.failAt {
		return r.failErr
	}
	return nil
}

// Screen returns the simulated on-screen text.
func (r *Recorder) Screen() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.screen)
}

// Actions returns every recorded action in order.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Backspaces returns the number of backspace taps recorded.
func (r *Recorder) Backspaces() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.actions {
		if a.IsTap && a.Tap == keystroke.KeyBackspace {
			n++
		}
	}
	return n
}

// Typed returns the text of every Type call in order.
func (r *Recorder) Typed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, a := range r.actions {
		if !a.IsTap {
			out = append(out, a.Text)
		}
	}
	return out
}

// Reset forgets recorded actions. The screen is kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
	r.calls = 0
}
