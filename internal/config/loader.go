package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"textreplacer/internal/rules"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Loader handles configuration loading, watching, and hot-reloading.
type Loader struct {
	path     string
	inline   []rules.Rule
	debounce time.Duration

	mu       sync.RWMutex
	config   *Config
	watcher  *fsnotify.Watcher
	timer    *time.Timer
	onChange []func(*Config)

	ctx     context.Context
	cancel  context.CancelFunc
	errChan chan error
	done    chan struct{}
}

// NewLoader creates a loader for the file at path. An empty path means no
// file; only the inline rules and defaults are used. Inline rules are
// reapplied on every reload.
func NewLoader(path string, inline []rules.Rule) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		path:     path,
		inline:   append([]rules.Rule(nil), inline...),
		debounce: DefaultDebounce,
		ctx:      ctx,
		cancel:   cancel,
		errChan:  make(chan error, 1),
	}
}

// Load reads, merges and validates the configuration.
func Load(path string, inline []rules.Rule) (*Config, error) {
	return NewLoader(path, inline).Load()
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.read()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
	return cfg, nil
}

func (l *Loader) read() (*Config, error) {
	cfg := DefaultConfig()
	if l.path != "" {
		var err error
		cfg, err = loadConfigFromFile(l.path)
		if err != nil {
			return nil, err
		}
	}

	cfg.Inline = append([]rules.Rule(nil), l.inline...)

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Config returns the current configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// Path returns the watched file path.
func (l *Loader) Path() string {
	return l.path
}

// OnChange registers a callback invoked with every successfully reloaded
// configuration. Register callbacks before calling Watch.
func (l *Loader) OnChange(cb func(*Config)) {
	l.onChange = append(l.onChange, cb)
}

// Errors returns a channel for errors that occur while watching. A failed
// reload leaves the previous configuration in place.
func (l *Loader) Errors() <-chan error {
	return l.errChan
}

// Watch starts watching the configuration file for changes.
// The directory is watched rather than the file so that editors that
// replace the file on save are followed.
func (l *Loader) Watch() error {
	if l.path == "" {
		return errors.New("no config file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	l.mu.Lock()
	l.watcher = watcher
	l.done = make(chan struct{})
	l.mu.Unlock()

	go l.watchLoop(watcher)
	return nil
}

func (l *Loader) watchLoop(watcher *fsnotify.Watcher) {
	defer close(l.done)
	base := filepath.Base(l.path)

	for {
		select {
		case <-l.ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			l.mu.Lock()
			if l.timer != nil {
				l.timer.Stop()
			}
			l.timer = time.AfterFunc(l.debounce, l.reload)
			l.mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			l.report(err)
		}
	}
}

func (l *Loader) reload() {
	if l.ctx.Err() != nil {
		return
	}

	cfg, err := l.read()
	if err != nil {
		l.report(fmt.Errorf("reload config: %w", err))
		return
	}

	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()

	for _, cb := range l.onChange {
		cb(cfg)
	}
}

func (l *Loader) report(err error) {
	select {
	case l.errChan <- err:
	default:
	}
}

// Close stops the watcher and releases resources.
func (l *Loader) Close() error {
	l.cancel()

	l.mu.Lock()
	watcher, done := l.watcher, l.done
	if l.timer != nil {
		l.timer.Stop()
	}
	l.mu.Unlock()

	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}

// loadConfigFromFile reads and parses a config file based on its extension.
// Every format is checked against the config schema before it is decoded.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}

	raw, err := decodeRaw(path, data)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}

	norm := normalize(raw).(map[string]any)
	stringifyReplacements(norm)

	doc, err := json.Marshal(norm)
	if err != nil {
		return nil, &ParseError{Source: path, Err: fmt.Errorf("normalize: %w", err)}
	}

	var generic any
	if err := json.Unmarshal(doc, &generic); err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	if err := validateDocument(generic); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(doc, cfg); err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	return cfg, nil
}

// decodeRaw decodes data into a generic document.
func decodeRaw(path string, data []byte) (map[string]any, error) {
	raw := map[string]any{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return autoDetectAndParse(data)
	}

	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// autoDetectAndParse attempts to parse the config in multiple formats.
func autoDetectAndParse(data []byte) (map[string]any, error) {
	raw := map[string]any{}
	if _, err := toml.Decode(string(data), &raw); err == nil {
		return raw, nil
	}

	raw = map[string]any{}
	if err := json.Unmarshal(data, &raw); err == nil {
		return raw, nil
	}

	raw = map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err == nil && raw != nil {
		return raw, nil
	}

	return nil, errors.New("unable to parse config file (tried TOML, JSON, YAML)")
}

// normalize converts decoder output into JSON-encodable values. YAML maps
// with non-string keys get their keys stringified.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

// stringifyReplacements turns scalar replacement values into their text, so
// `n = 42` maps the trigger n to "42".
func stringifyReplacements(doc map[string]any) {
	reps, ok := doc["replacements"].(map[string]any)
	if !ok {
		return
	}
	for k, v := range reps {
		switch v.(type) {
		case bool, int, int64, uint64, float64:
			reps[k] = fmt.Sprint(v)
		}
	}
}
