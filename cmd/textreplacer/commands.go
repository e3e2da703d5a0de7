package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"textreplacer/internal/config"
	"textreplacer/internal/inject"
	"textreplacer/internal/rules"
	"textreplacer/internal/store"
)

func cmdCheck(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("check", stderr)
	var cf configFlags
	cf.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	loader, cfg, err := cf.load()
	if err != nil {
		return err
	}
	table, err := cfg.Table()
	if err != nil {
		return err
	}

	if loader.Path() != "" {
		fmt.Fprintf(stdout, "Config: %s\n", loader.Path())
	} else {
		fmt.Fprintln(stdout, "Config: (none)")
	}
	printRules(stdout, table)

	if table.MaxTriggerLen() > rules.MaxTriggerLen {
		for _, r := range table.Rules() {
			if r.TriggerLen() > rules.MaxTriggerLen {
				fmt.Fprintf(stdout, "  warning: %q is longer than %d characters and will never match\n", r.Trigger, rules.MaxTriggerLen)
			}
		}
	}

	file := cfg.FileMapping()
	for _, r := range cfg.Inline {
		if old, ok := file.Get(r.Trigger); ok && old != r.Replacement {
			fmt.Fprintf(stdout, "  note: --map %q overrides the config file\n", r.Trigger)
		}
	}

	if cfg.Engine.PasteFallback {
		for _, r := range table.Rules() {
			if inject.Typable(r.Replacement) != nil {
				fmt.Fprintf(stdout, "  note: %q will be pasted through the clipboard\n", r.Trigger)
			}
		}
	}

	fmt.Fprintln(stdout, "Configuration OK")
	return nil
}

func cmdStats(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("stats", stderr)
	dbPath := fs.String("db", "", "Statistics database (default: <data dir>/stats.db)")
	days := fs.Int("days", 7, "Show daily totals for this many days (0 to hide)")
	reset := fs.Bool("reset", false, "Delete all statistics")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	path := *dbPath
	if path == "" {
		path = config.DefaultConfig().StatsPath()
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stdout, "No statistics recorded yet (%s).\n", path)
		fmt.Fprintln(stdout, "Enable them with [stats] enabled = true or TEXTREPLACER_STATS=1.")
		return nil
	}

	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	if *reset {
		if err := st.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Statistics reset.")
		return nil
	}

	counts, err := st.Counts()
	if err != nil {
		return err
	}
	total, err := st.Total()
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Replacements: %d\n\n", total)
	if len(counts) > 0 {
		fmt.Fprintf(stdout, "%-24s %8s  %s\n", "TRIGGER", "COUNT", "LAST USED")
		for _, c := range counts {
			fmt.Fprintf(stdout, "%-24s %8d  %s\n", c.Trigger, c.Count, c.LastUsed.Local().Format("2006-01-02 15:04"))
		}
	}

	if *days > 0 {
		since := time.Now().AddDate(0, 0, -(*days - 1))
		daily, err := st.Daily(since)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nLast %d days:\n", *days)
		for _, d := range daily {
			fmt.Fprintf(stdout, "  %s  %d\n", d.Day, d.Count)
		}
	}
	return nil
}

func cmdInit(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("init", stderr)
	path := fs.String("config", config.ConfigPath(), "Where to write the config file")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := config.SaveConfig(config.SampleConfig(), *path, *force); err != nil {
		if errors.Is(err, config.ErrExists) {
			return usageError{fmt.Errorf("%w (use --force to overwrite)", err)}
		}
		return err
	}

	fmt.Fprintf(stdout, "Wrote sample configuration to %s\n", *path)
	fmt.Fprintf(stdout, "Check it with: textreplacer check --config %s\n", *path)
	return nil
}
