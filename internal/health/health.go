// Package health runs the environment checks behind `textreplacer doctor`.
//
// Each check answers one question (can the keyboard be hooked, is the lock
// free, can statistics be written) and reports a Status. Checks run
// concurrently with a timeout and are reported in registration order.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "ok"
	StatusDegraded  Status = "warn"
	StatusUnhealthy Status = "fail"
	StatusUnknown   Status = "unknown"
)

// CheckResult is the result of one check.
type CheckResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
	Critical bool          `json:"critical"`
	Duration time.Duration `json:"duration_ns"`
}

// Check performs a health check.
type Check func(ctx context.Context) CheckResult

// Component is a named check.
type Component struct {
	Name     string
	Critical bool // failure makes the overall status unhealthy
	Check    Check
	Timeout  time.Duration
}

// DefaultTimeout bounds a check that sets no timeout of its own.
const DefaultTimeout = 5 * time.Second

// Checker runs a list of checks.
type Checker struct {
	mu         sync.Mutex
	components []*Component
}

// NewChecker creates an empty Checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Register adds a component. Components are reported in the order added.
func (c *Checker) Register(component *Component) {
	if component.Timeout == 0 {
		component.Timeout = DefaultTimeout
	}
	c.mu.Lock()
	c.components = append(c.components, component)
	c.mu.Unlock()
}

// RegisterFunc registers a check function.
func (c *Checker) RegisterFunc(name string, critical bool, check Check) {
	c.Register(&Component{Name: name, Critical: critical, Check: check})
}

// Run executes every check and returns the results in registration order.
func (c *Checker) Run(ctx context.Context) []CheckResult {
	c.mu.Lock()
	components := append([]*Component(nil), c.components...)
	c.mu.Unlock()

	results := make([]CheckResult, len(components))
	var wg sync.WaitGroup
	for i, comp := range components {
		wg.Add(1)
		go func(i int, comp *Component) {
			defer wg.Done()
			results[i] = run(ctx, comp)
		}(i, comp)
	}
	wg.Wait()
	return results
}

func run(ctx context.Context, comp *Component) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, comp.Timeout)
	defer cancel()

	start := time.Now()
	done := make(chan CheckResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- CheckResult{Status: StatusUnhealthy, Message: "check panicked", Error: fmt.Sprint(r)}
			}
		}()
		done <- comp.Check(checkCtx)
	}()

	var result CheckResult
	select {
	case result = <-done:
	case <-checkCtx.Done():
		result = CheckResult{Status: StatusUnhealthy, Message: "check timed out", Error: checkCtx.Err().Error()}
	}

	result.Name = comp.Name
	result.Critical = comp.Critical
	result.Duration = time.Since(start)
	if result.Status == "" {
		result.Status = StatusUnknown
	}
	return result
}

// Overall aggregates results. A failed critical check is unhealthy; any
// other failure or warning is degraded.
func Overall(results []CheckResult) Status {
	status := StatusHealthy
	for _, r := range results {
		switch r.Status {
		case StatusUnhealthy:
			if r.Critical {
				return StatusUnhealthy
			}
			status = StatusDegraded
		case StatusDegraded, StatusUnknown:
			status = StatusDegraded
		}
	}
	return status
}

// Healthy is a passing result.
func Healthy(msg string) CheckResult {
	return CheckResult{Status: StatusHealthy, Message: msg}
}

// Degraded is a warning result.
func Degraded(msg string) CheckResult {
	return CheckResult{Status: StatusDegraded, Message: msg}
}

// Unhealthy is a failing result.
func Unhealthy(msg string, err error) CheckResult {
	r := CheckResult{Status: StatusUnhealthy, Message: msg}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// CustomCheck turns fn into a check that passes when fn returns nil.
func CustomCheck(ok string, fn func() error) Check {
	return func(ctx context.Context) CheckResult {
		if err := fn(); err != nil {
			return Unhealthy("check failed", err)
		}
		return Healthy(ok)
	}
}
