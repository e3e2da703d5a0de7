package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textreplacer/internal/config"
	"textreplacer/internal/health"
	"textreplacer/internal/keystroke"
	"textreplacer/internal/rules"
	"textreplacer/internal/store"
)

// isolate points every user directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"HOME", "XDG_CONFIG_HOME", "XDG_DATA_HOME", "APPDATA"} {
		t.Setenv(name, dir)
	}
	for _, name := range []string{config.EnvLogLevel, config.EnvStats, config.EnvPasteFallback} {
		t.Setenv(name, "")
	}
	return dir
}

func TestCommandFor(t *testing.T) {
	tests := []struct {
		args []string
		cmd  string
		rest int
	}{
		{nil, "run", 0},
		{[]string{"--map", "a=b"}, "run", 2},
		{[]string{"check", "--config", "x"}, "check", 2},
		{[]string{"--help"}, "--help", 0},
		{[]string{"stats"}, "stats", 0},
	}

	for _, tt := range tests {
		cmd, rest := commandFor(tt.args)
		assert.Equal(t, tt.cmd, cmd, "args %v", tt.args)
		assert.Len(t, rest, tt.rest, "args %v", tt.args)
	}
}

func TestMapFlag(t *testing.T) {
	var m mapFlag
	require.NoError(t, m.Set("btw=by the way"))
	require.NoError(t, m.Set("ty=thank you"))

	assert.Equal(t, mapFlag{"btw=by the way", "ty=thank you"}, m)
	assert.Equal(t, "btw=by the way,ty=thank you", m.String())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitConfig, exitCode(config.ValidationErrors{{Field: "x", Message: "y"}}))
	assert.Equal(t, exitConfig, exitCode(&config.ParseError{Source: "--map", Err: errors.New("bad")}))
	assert.Equal(t, exitConfig, exitCode(fmt.Errorf("wrapped: %w", rules.ErrNoRules)))
	assert.Equal(t, exitConfig, exitCode(&rules.TriggerError{Err: rules.ErrEmptyTrigger}))
	assert.Equal(t, exitConfig, exitCode(usageError{errors.New("flag")}))
	assert.Equal(t, exitError, exitCode(errors.New("inject backspace: device gone")))
}

func TestUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runMain([]string{"frobnicate"}, &stdout, &stderr)

	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr.String(), "Unknown command: frobnicate")
}

func TestHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runMain([]string{"help"}, &stdout, &stderr)

	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "USAGE")
}

func TestCheckWithConfigAndMaps(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"replacements": {"btw": "by the way"}}`), 0600))

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"check", "--config", path, "--map", "omg=oh my god"}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, `"btw" -> "by the way"`)
	assert.Contains(t, out, `"omg" -> "oh my god"`)
	assert.Contains(t, out, "Configuration OK")
}

func TestCheckNotesInlineOverride(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte("[replacements]\nbtw = \"by the way\"\n"), 0600))

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"check", "--config", path, "--map", "btw=BTW"}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), `"btw" -> "BTW"`)
	assert.Contains(t, stdout.String(), `--map "btw" overrides the config file`)
}

func TestCheckWarnsUnreachableTrigger(t *testing.T) {
	isolate(t)
	long := strings.Repeat("x", 251)

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"check", "--map", long + "=never"}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "will never match")
}

func TestCheckWithoutRules(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"check"}, &stdout, &stderr)

	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr.String(), "replacements")
}

func TestCheckBadMap(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"check", "--map", "noequals"}, &stdout, &stderr)

	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr.String(), "trigger=replacement")
}

func TestCheckBadLogLevel(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"check", "--map", "a=b", "--log-level", "loud"}, &stdout, &stderr)

	assert.Equal(t, exitConfig, code)
}

func TestRunRejectsBadFlags(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"--no-such-flag"}, &stdout, &stderr)

	assert.Equal(t, exitConfig, code)
}

func TestRunWithoutRulesNeverStarts(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"run"}, &stdout, &stderr)

	assert.Equal(t, exitConfig, code)
	assert.Empty(t, stdout.String(), "rules must not be printed for a bad configuration")
}

func TestInitThenCheck(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "conf", "config.yaml")

	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, runMain([]string{"init", "--config", path}, &stdout, &stderr), stderr.String())
	assert.FileExists(t, path)

	stdout.Reset()
	require.Equal(t, exitOK, runMain([]string{"check", "--config", path}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), `"imho" -> "in my humble opinion"`)

	stderr.Reset()
	assert.Equal(t, exitConfig, runMain([]string{"init", "--config", path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "--force")

	assert.Equal(t, exitOK, runMain([]string{"init", "--config", path, "--force"}, &stdout, &stderr))
}

func TestStatsWithoutDatabase(t *testing.T) {
	dir := isolate(t)

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"stats", "--db", filepath.Join(dir, "none.db")}, &stdout, &stderr)

	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "No statistics recorded")
	assert.NoFileExists(t, filepath.Join(dir, "none.db"))
}

func TestStatsPrintsCounts(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "stats.db")

	st, err := store.Open(path)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, st.RecordBatch([]store.Hit{
		{Trigger: "btw", At: now},
		{Trigger: "btw", At: now},
		{Trigger: "omg", At: now},
	}))
	require.NoError(t, st.Close())

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"stats", "--db", path}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Replacements: 3")
	assert.Regexp(t, `btw\s+2`, out)
	assert.Regexp(t, `omg\s+1`, out)
	assert.Contains(t, out, now.Format("2006-01-02")+"  3")

	stdout.Reset()
	require.Equal(t, exitOK, runMain([]string{"stats", "--db", path, "--reset"}, &stdout, &stderr))
	stdout.Reset()
	require.Equal(t, exitOK, runMain([]string{"stats", "--db", path}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Replacements: 0")
}

type unavailableSource struct {
	*keystroke.SimulatedSource
}

func (unavailableSource) Available() (bool, string) {
	return false, "no permission"
}

func canInject() (bool, string) { return true, "test keyboard" }

func TestDoctorChecks(t *testing.T) {
	dir := isolate(t)
	t.Setenv("XDG_RUNTIME_DIR", dir)
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path=/nonexistent/textreplacer-test-bus")

	cf := &configFlags{maps: mapFlag{"btw=by the way"}}
	results := doctorChecks(cf, keystroke.NewSimulated(), canInject).Run(context.Background())

	byName := map[string]health.CheckResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.Equal(t, health.StatusHealthy, byName["config"].Status)
	assert.Contains(t, byName["config"].Message, "1 rules from command line")
	assert.Equal(t, health.StatusHealthy, byName["keyboard hook"].Status)
	assert.Equal(t, health.StatusHealthy, byName["key injection"].Status)
	assert.Equal(t, health.StatusHealthy, byName["statistics"].Status)
	assert.Equal(t, health.StatusDegraded, byName["notifications"].Status)
	assert.NotEqual(t, health.StatusUnhealthy, health.Overall(results))
}

func TestDoctorFailsWithoutHook(t *testing.T) {
	dir := isolate(t)
	t.Setenv("XDG_RUNTIME_DIR", dir)

	cf := &configFlags{maps: mapFlag{"btw=by the way"}}
	src := unavailableSource{keystroke.NewSimulated()}
	results := doctorChecks(cf, src, canInject).Run(context.Background())

	assert.Equal(t, health.StatusUnhealthy, health.Overall(results))
}

func TestDoctorFailsWithoutInjection(t *testing.T) {
	dir := isolate(t)
	t.Setenv("XDG_RUNTIME_DIR", dir)

	cf := &configFlags{maps: mapFlag{"btw=by the way"}}
	noUinput := func() (bool, string) { return false, "no uinput device" }
	results := doctorChecks(cf, keystroke.NewSimulated(), noUinput).Run(context.Background())

	var injection health.CheckResult
	for _, r := range results {
		if r.Name == "key injection" {
			injection = r
		}
	}
	assert.Equal(t, health.StatusUnhealthy, injection.Status)
	assert.Equal(t, "no uinput device", injection.Error)
	assert.Equal(t, health.StatusUnhealthy, health.Overall(results))
}

func TestDoctorReportsBadConfig(t *testing.T) {
	dir := isolate(t)
	t.Setenv("XDG_RUNTIME_DIR", dir)

	results := doctorChecks(&configFlags{}, keystroke.NewSimulated(), canInject).Run(context.Background())

	require.NotEmpty(t, results)
	assert.Equal(t, "config", results[0].Name)
	assert.Equal(t, health.StatusUnhealthy, results[0].Status)
}
