// textreplacer - Global keystroke text replacement
//
// Watches keyboard input system-wide and, when a configured trigger is
// followed by a word delimiter, erases the trigger and types its replacement.
//
//	textreplacer [run] [--config PATH] [--map TRIGGER=TEXT]...
//	textreplacer check    Validate configuration and print the rules
//	textreplacer stats    Show per-trigger replacement counts
//	textreplacer init     Write a sample config file
//	textreplacer doctor   Check the environment
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"textreplacer/internal/config"
	"textreplacer/internal/rules"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit statuses.
const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
)

func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

func runMain(args []string, stdout, stderr io.Writer) int {
	cmd, rest := commandFor(args)

	var err error
	switch cmd {
	case "run":
		err = cmdRun(rest, stdout, stderr)
	case "check":
		err = cmdCheck(rest, stdout, stderr)
	case "stats":
		err = cmdStats(rest, stdout, stderr)
	case "init":
		err = cmdInit(rest, stdout, stderr)
	case "doctor":
		err = cmdDoctor(rest, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "textreplacer %s\n", version)
	case "help", "-h", "--help":
		usage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", cmd)
		usage(stderr)
		return exitConfig
	}

	if err == nil {
		return exitOK
	}
	if !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

// commandFor splits args into a subcommand and its arguments. With no
// arguments, or when the first one is a flag, the command is run.
func commandFor(args []string) (string, []string) {
	if len(args) == 0 {
		return "run", nil
	}
	if strings.HasPrefix(args[0], "-") && args[0] != "-h" && args[0] != "--help" {
		return "run", args
	}
	return args[0], args[1:]
}

// usageError marks a bad command line.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// exitCode maps err to the process exit status. Configuration and usage
// problems exit 2; everything found while running exits 1.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var ue usageError
	var te *rules.TriggerError
	switch {
	case errors.As(err, &ue),
		errors.As(err, &te),
		errors.Is(err, rules.ErrNoRules),
		config.IsConfigError(err):
		return exitConfig
	}
	return exitError
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `textreplacer - Global text replacement as you type

USAGE:
    textreplacer [command] [options]

COMMANDS:
    run                 Start replacing text (default)
    check               Validate the configuration and print the rules
    stats               Show how often each trigger was replaced
    init                Write a sample configuration file
    doctor              Check that this machine can run textreplacer
    version             Print the version
    help                Show this help message

RUN OPTIONS:
    --config PATH       Config file (TOML, JSON or YAML)
    --map T=R           Add a rule; repeatable, overrides the config file
    --watch             Reload the config file when it changes
    --log-level LEVEL   debug, info, warn or error

EXAMPLES:
    textreplacer --map btw="by the way" --map omg="oh my god"
    textreplacer run --config ~/.config/textreplacer/config.toml --watch
    textreplacer check --config rules.json

A replacement fires when a trigger is followed by a space, newline, tab
or one of . , ! ? ; : ) ] }

PRIVACY NOTE:
    Typed text is held in memory only while a word is being typed.
    It is never written to logs or to the statistics database.`)
}
