package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"slices"
	"sync"
	"time"
)

const crashGlob = "crash-*.json"

// CrashReport is written as JSON for every panic the handler recovers.
type CrashReport struct {
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version"`
	GOOS       string            `json:"goos"`
	GOARCH     string            `json:"goarch"`
	GoVersion  string            `json:"go_version"`
	PanicValue string            `json:"panic_value"`
	StackTrace string            `json:"stack_trace"`
	Component  string            `json:"component,omitempty"`
	Context    map[string]string `json:"context,omitempty"`
}

// CrashHandlerConfig configures NewCrashHandler. Zero values are fine.
type CrashHandlerConfig struct {
	CrashDir  string
	Version   string
	Component string

	// OnCrash runs after the report is written.
	OnCrash func(CrashReport)

	// Stderr receives the human-readable summary. Defaults to os.Stderr.
	Stderr io.Writer
}

// CrashHandler turns panics into crash report files.
type CrashHandler struct {
	cfg CrashHandlerConfig
	mu  sync.Mutex
}

// DefaultCrashDir sits next to the default log file.
func DefaultCrashDir() string {
	return filepath.Join(filepath.Dir(defaultLogPath()), "crashes")
}

func NewCrashHandler(cfg *CrashHandlerConfig) *CrashHandler {
	h := &CrashHandler{}
	if cfg != nil {
		h.cfg = *cfg
	}
	if h.cfg.CrashDir == "" {
		h.cfg.CrashDir = DefaultCrashDir()
	}
	if h.cfg.Stderr == nil {
		h.cfg.Stderr = os.Stderr
	}
	return h
}

// Recover runs fn. A panic inside fn is recorded and returned as an error;
// fn's own error passes through untouched.
func (h *CrashHandler) Recover(info map[string]string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %s", h.HandlePanic(r, info).PanicValue)
		}
	}()
	return fn()
}

// HandlePanic records v and returns the report.
func (h *CrashHandler) HandlePanic(v any, info map[string]string) CrashReport {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := CrashReport{
		Timestamp:  time.Now().UTC(),
		Version:    h.cfg.Version,
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		GoVersion:  runtime.Version(),
		PanicValue: fmt.Sprint(v),
		StackTrace: string(debug.Stack()),
		Component:  h.cfg.Component,
		Context:    info,
	}

	w := h.cfg.Stderr
	fmt.Fprintf(w, "\ntextreplacer crashed at %s: %s\n%s\n",
		r.Timestamp.Format(time.RFC3339), r.PanicValue, r.StackTrace)

	if path, err := h.write(r); err != nil {
		fmt.Fprintf(w, "could not save crash report: %v\n", err)
	} else {
		fmt.Fprintf(w, "crash report saved to %s\n", path)
	}

	if h.cfg.OnCrash != nil {
		h.cfg.OnCrash(r)
	}
	return r
}

func (h *CrashHandler) write(r CrashReport) (string, error) {
	if err := os.MkdirAll(h.cfg.CrashDir, 0700); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	name := "crash-" + r.Component + "-" + r.Timestamp.Format("20060102-150405.000") + ".json"
	path := filepath.Join(h.cfg.CrashDir, name)
	return path, os.WriteFile(path, data, 0600)
}

// CrashReports lists saved reports, oldest first. Unreadable files are
// skipped.
func (h *CrashHandler) CrashReports() ([]CrashReport, error) {
	files, err := filepath.Glob(filepath.Join(h.cfg.CrashDir, crashGlob))
	if err != nil {
		return nil, err
	}

	var reports []CrashReport
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		var r CrashReport
		if json.Unmarshal(data, &r) == nil {
			reports = append(reports, r)
		}
	}
	slices.SortFunc(reports, func(a, b CrashReport) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return reports, nil
}

// CleanupOldCrashReports deletes reports last modified more than maxAge ago.
func (h *CrashHandler) CleanupOldCrashReports(maxAge time.Duration) error {
	files, err := filepath.Glob(filepath.Join(h.cfg.CrashDir, crashGlob))
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-maxAge)
	for _, f := range files {
		if fi, err := os.Stat(f); err == nil && fi.ModTime().Before(cutoff) {
			_ = os.Remove(f)
		}
	}
	return nil
}
