// Package engine turns a stream of key presses into text replacements.
//
// The Engine keeps the most recently typed characters in a rolling buffer.
// When a delimiter is typed and the buffer ends with a configured trigger,
// the engine erases the trigger and the delimiter with synthetic backspaces,
// types the replacement, and retypes the delimiter.
//
// The synthetic keys travel through the same global input stream the engine
// observes. For SuppressWindow after every injection, incoming events are
// discarded so the engine never reacts to its own output.
//
// An Engine is not safe for concurrent use. Run drives it from one goroutine;
// tests may call HandleEvent directly.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"textreplacer/internal/keystroke"
	"textreplacer/internal/rules"
)

const (
	// BacktrackLimit is the number of typed characters the buffer retains.
	// Triggers longer than this can never match.
	BacktrackLimit = rules.MaxTriggerLen

	// SuppressWindow is how long incoming events are ignored after an injection.
	SuppressWindow = 200 * time.Millisecond
)

// Delimiters is the fixed set of characters that end a word.
const Delimiters = " \n\t.,!?;:)]}"

// IsDelimiter reports whether r ends a word.
func IsDelimiter(r rune) bool {
	return strings.ContainsRune(Delimiters, r)
}

// Injector synthesizes key presses.
type Injector interface {
	// Tap presses and releases a named key.
	Tap(key keystroke.ControlKey) error
	// Type types text as if the user had typed it.
	Type(text string) error
}

// TextChecker is implemented by injectors that cannot type every character.
// Text the user typed after a held match is only erased and retyped when
// CanType accepts it.
type TextChecker interface {
	CanType(text string) bool
}

// Reporter is told about every replacement. It is called from the event
// loop and must not block.
type Reporter interface {
	Replaced(trigger string, at time.Time)
}

// pending is a match that was held back because the buffer plus its
// delimiter might still grow into a longer trigger.
type pending struct {
	rule  rules.Rule
	end   int // buffer index just past the trigger; the delimiter sits here
	delim rune
}

func (p *pending) start() int {
	return p.end - p.rule.TriggerLen()
}

// Engine is the replacement state machine.
type Engine struct {
	table    *rules.Table
	out      Injector
	now      func() time.Time
	log      *slog.Logger
	reporter Reporter

	buf           []rune
	held          *pending
	suppressUntil time.Time

	reload chan *rules.Table
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for the suppression window.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithReporter sets the replacement reporter.
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// New creates an engine over table that injects through out.
func New(table *rules.Table, out Injector, opts ...Option) *Engine {
	e := &Engine{
		table:  table,
		out:    out,
		now:    time.Now,
		log:    slog.Default(),
		buf:    make([]rune, 0, BacktrackLimit+1),
		reload: make(chan *rules.Table, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Buffer returns the currently buffered text.
func (e *Engine) Buffer() string {
	return string(e.buf)
}

// SuppressedUntil returns the end of the current suppression window.
func (e *Engine) SuppressedUntil() time.Time {
	return e.suppressUntil
}

// Table returns the active rule table.
func (e *Engine) Table() *rules.Table {
	return e.table
}

// HandleEvent processes one key press. A non-nil error means an injection
// failed; the on-screen text may be partially edited and the caller should
// stop.
func (e *Engine) HandleEvent(ev keystroke.Event) error {
	at := ev.When
	if at.IsZero() {
		at = e.now()
	}
	if at.Before(e.suppressUntil) {
		return nil
	}

	switch k := ev.Key.(type) {
	case keystroke.ControlKey:
		switch k {
		case keystroke.KeyBackspace:
			e.backspace()
			return nil
		case keystroke.KeyOther:
			e.caretMoved()
			return nil
		}
		if text, ok := k.Text(); ok {
			r, _ := utf8.DecodeRuneInString(text)
			return e.delimit(r)
		}
		return nil
	case keystroke.Character:
		r := rune(k)
		if IsDelimiter(r) {
			return e.delimit(r)
		}
		if !unicode.IsPrint(r) {
			return nil
		}
		return e.insert(r)
	default:
		return nil
	}
}

func (e *Engine) backspace() {
	if len(e.buf) == 0 {
		return
	}
	e.buf = e.buf[:len(e.buf)-1]
	if e.held != nil && len(e.buf) <= e.held.end {
		e.held = nil
	}
}

// caretMoved forgets a held match or a buffer spanning a delimiter: the
// text they describe may no longer sit before the caret.
func (e *Engine) caretMoved() {
	if e.held != nil || lastDelimiter(e.buf) >= 0 {
		e.reset()
	}
}

func (e *Engine) insert(r rune) error {
	e.buf = append(e.buf, r)
	if over := len(e.buf) - BacktrackLimit; over > 0 {
		e.buf = e.buf[over:]
		if e.held != nil {
			e.held.end -= over
			if e.held.start() < 0 {
				e.held = nil
			}
		}
	}
	return e.settle()
}

// settle shrinks a buffer that spans a delimiter once it can no longer
// become a trigger, resolving a held match first.
func (e *Engine) settle() error {
	for {
		last := lastDelimiter(e.buf)
		if last < 0 || e.table.Extends(string(e.buf)) {
			return nil
		}
		if e.held != nil {
			if err := e.resolve(""); err != nil {
				return err
			}
			continue
		}
		e.buf = e.buf[last+1:]
	}
}

// delimit runs the replacement procedure for delimiter d. The delimiter has
// already reached the screen.
func (e *Engine) delimit(d rune) error {
	text := string(e.buf)
	m, ok := e.table.Match(text)

	if e.table.Extends(text + string(d)) {
		if ok && (e.held == nil || e.covers(m)) {
			e.held = &pending{rule: m, end: len(e.buf), delim: d}
		}
		e.buf = append(e.buf, d)
		return nil
	}

	if e.held != nil && !(ok && e.covers(m)) {
		if err := e.resolve(string(d)); err != nil {
			return err
		}
		return e.delimit(d)
	}

	var err error
	if ok {
		err = e.replace(m, string(d))
	}
	e.reset()
	return err
}

// covers reports whether m, matched at the end of the buffer, starts at or
// before the held match.
func (e *Engine) covers(m rules.Rule) bool {
	return len(e.buf)-m.TriggerLen() <= e.held.start()
}

func (e *Engine) replace(m rules.Rule, delim string) error {
	erase := m.TriggerLen() + utf8.RuneCountInString(delim)
	if err := e.inject(erase, m.Replacement, delim); err != nil {
		return err
	}
	e.replaced(m.Trigger)
	return nil
}

// resolve performs the held replacement after the buffer moved past it.
// Everything typed after the held trigger is erased and retyped, followed
// by extra when the triggering key is itself on screen. If the injector
// cannot retype that text the held match is dropped and nothing is sent.
func (e *Engine) resolve(extra string) error {
	h := e.held
	e.held = nil

	tail := string(e.buf[h.end:])
	if !e.canType(tail + extra) {
		e.log.Debug("held replacement dropped", "trigger", h.rule.Trigger)
		e.buf = append(e.buf[:0], e.buf[h.end+1:]...)
		return nil
	}
	erase := h.rule.TriggerLen() + utf8.RuneCountInString(tail) + utf8.RuneCountInString(extra)
	if err := e.inject(erase, h.rule.Replacement, tail+extra); err != nil {
		return err
	}
	e.replaced(h.rule.Trigger)

	e.buf = append(e.buf[:0], e.buf[h.end+1:]...)
	return nil
}

// inject erases n characters, types text and then suffix. The suppression
// deadline is set before the first synthetic key.
func (e *Engine) inject(n int, text, suffix string) error {
	e.suppressUntil = e.now().Add(SuppressWindow)

	for i := 0; i < n; i++ {
		if err := e.out.Tap(keystroke.KeyBackspace); err != nil {
			return fmt.Errorf("inject backspace %d of %d: %w", i+1, n, err)
		}
	}
	if err := e.out.Type(text); err != nil {
		return fmt.Errorf("inject replacement: %w", err)
	}
	if suffix != "" {
		if err := e.out.Type(suffix); err != nil {
			return fmt.Errorf("inject delimiter: %w", err)
		}
	}
	return nil
}

func (e *Engine) canType(text string) bool {
	if c, ok := e.out.(TextChecker); ok {
		return c.CanType(text)
	}
	return true
}

func (e *Engine) replaced(trigger string) {
	e.log.Debug("replaced", "trigger", trigger)
	if e.reporter != nil {
		e.reporter.Replaced(trigger, e.now())
	}
}

func (e *Engine) reset() {
	e.buf = e.buf[:0]
	e.held = nil
}

func (e *Engine) swap(t *rules.Table) {
	e.table = t
	e.reset()
	e.log.Info("rules reloaded", "rules", t.Len())
}

func lastDelimiter(buf []rune) int {
	for i := len(buf) - 1; i >= 0; i-- {
		if IsDelimiter(buf[i]) {
			return i
		}
	}
	return -1
}

// Reload replaces the rule table. The swap happens on the Run goroutine
// between events and clears the buffer. Only the most recent table handed
// to Reload before the swap is used.
func (e *Engine) Reload(t *rules.Table) {
	for {
		select {
		case e.reload <- t:
			return
		default:
			select {
			case <-e.reload:
			default:
			}
		}
	}
}

// Run starts src and processes its events until ctx is cancelled, the
// source closes its channel, or an injection fails. The source is always
// stopped before Run returns.
func (e *Engine) Run(ctx context.Context, src keystroke.Source) error {
	if err := src.Start(ctx); err != nil {
		return fmt.Errorf("start key source: %w", err)
	}
	defer func() {
		if err := src.Stop(); err != nil {
			e.log.Warn("stop key source", "error", err)
		}
		if n := src.Dropped(); n > 0 {
			e.log.Warn("key source stopped", "dropped", n)
		}
	}()

	e.log.Info("engine running", "rules", e.table.Len())
	events := src.Events()
	var dropped uint64

	for {
		// A pending reload takes effect before the next event.
		select {
		case t := <-e.reload:
			e.swap(t)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			e.log.Info("engine stopping", "reason", ctx.Err())
			return nil

		case t := <-e.reload:
			e.swap(t)

		case ev, ok := <-events:
			if !ok {
				e.log.Info("key source closed")
				return nil
			}
			// Lost events leave the buffer out of step with the screen.
			if n := src.Dropped(); n > dropped {
				e.log.Warn("key events dropped, buffer cleared", "dropped", n-dropped)
				dropped = n
				e.reset()
			}
			if err := e.HandleEvent(ev); err != nil {
				return err
			}
		}
	}
}
