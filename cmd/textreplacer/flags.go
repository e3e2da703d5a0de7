package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"textreplacer/internal/config"
	"textreplacer/internal/rules"
)

// mapFlag collects repeated --map values.
type mapFlag []string

func (m *mapFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *mapFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

// configFlags are shared by commands that load the configuration.
type configFlags struct {
	path     string
	maps     mapFlag
	logLevel string
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func (c *configFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.path, "config", "", "Config file (default: ./config.toml or the user config dir)")
	fs.Var(&c.maps, "map", "Rule as trigger=replacement (repeatable)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return usageError{err}
	}
	if fs.NArg() > 0 {
		return usageError{fmt.Errorf("unexpected argument %q", fs.Arg(0))}
	}
	return nil
}

// load builds a loader from the flags and loads the configuration. Without
// --config the usual locations are searched; finding nothing is fine when
// rules are given with --map.
func (c *configFlags) load() (*config.Loader, *config.Config, error) {
	inline, err := config.ParseMappings(c.maps)
	if err != nil {
		return nil, nil, err
	}

	path := c.path
	if path == "" {
		path = config.FindConfigFile()
	}

	loader := config.NewLoader(path, inline)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}

	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return loader, cfg, nil
}

// printRules lists the rules in match-priority order.
func printRules(w io.Writer, t *rules.Table) {
	fmt.Fprintf(w, "Active replacements (%d):\n", t.Len())
	for _, r := range t.Rules() {
		fmt.Fprintf(w, "  %q -> %q\n", r.Trigger, r.Replacement)
	}
}
