package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunKeepsOrder(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("slow", true, func(ctx context.Context) CheckResult {
		time.Sleep(20 * time.Millisecond)
		return Healthy("slow ok")
	})
	c.RegisterFunc("fast", false, func(ctx context.Context) CheckResult {
		return Degraded("meh")
	})

	results := c.Run(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, "slow", results[0].Name)
	assert.Equal(t, StatusHealthy, results[0].Status)
	assert.True(t, results[0].Critical)
	assert.Equal(t, "fast", results[1].Name)
	assert.Equal(t, StatusDegraded, results[1].Status)
}

func TestRunTimeout(t *testing.T) {
	c := NewChecker()
	c.Register(&Component{
		Name:    "stuck",
		Timeout: 10 * time.Millisecond,
		Check: func(ctx context.Context) CheckResult {
			<-ctx.Done()
			time.Sleep(50 * time.Millisecond)
			return Healthy("late")
		},
	})

	results := c.Run(context.Background())
	assert.Equal(t, StatusUnhealthy, results[0].Status)
	assert.Equal(t, "check timed out", results[0].Message)
}

func TestRunRecoversPanic(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("boom", true, func(ctx context.Context) CheckResult {
		panic("boom")
	})

	results := c.Run(context.Background())
	assert.Equal(t, StatusUnhealthy, results[0].Status)
	assert.Equal(t, "boom", results[0].Error)
}

func TestEmptyStatusIsUnknown(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("blank", false, func(ctx context.Context) CheckResult {
		return CheckResult{}
	})

	results := c.Run(context.Background())
	assert.Equal(t, StatusUnknown, results[0].Status)
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name    string
		results []CheckResult
		want    Status
	}{
		{"empty", nil, StatusHealthy},
		{"all ok", []CheckResult{{Status: StatusHealthy}}, StatusHealthy},
		{"warning", []CheckResult{{Status: StatusHealthy}, {Status: StatusDegraded}}, StatusDegraded},
		{"optional failure", []CheckResult{{Status: StatusUnhealthy}}, StatusDegraded},
		{"critical failure", []CheckResult{{Status: StatusDegraded}, {Status: StatusUnhealthy, Critical: true}}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overall(tt.results))
		})
	}
}

func TestCustomCheck(t *testing.T) {
	ok := CustomCheck("fine", func() error { return nil })(context.Background())
	assert.Equal(t, StatusHealthy, ok.Status)
	assert.Equal(t, "fine", ok.Message)

	bad := CustomCheck("fine", func() error { return errors.New("nope") })(context.Background())
	assert.Equal(t, StatusUnhealthy, bad.Status)
	assert.Equal(t, "nope", bad.Error)
}
