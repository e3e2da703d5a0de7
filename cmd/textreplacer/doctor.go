package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"textreplacer/internal/config"
	"textreplacer/internal/health"
	"textreplacer/internal/inject"
	"textreplacer/internal/keystroke"
	"textreplacer/internal/lock"
	"textreplacer/internal/notify"
	"textreplacer/internal/store"
)

func cmdDoctor(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("doctor", stderr)
	var cf configFlags
	cf.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	results := doctorChecks(&cf, keystroke.New(), inject.Available).Run(context.Background())
	for _, r := range results {
		line := fmt.Sprintf("[%-4s] %-18s %s", r.Status, r.Name, r.Message)
		if r.Error != "" {
			line += ": " + r.Error
		}
		fmt.Fprintln(stdout, line)
	}

	overall := health.Overall(results)
	fmt.Fprintf(stdout, "\nOverall: %s\n", overall)
	if overall == health.StatusUnhealthy {
		return errors.New("textreplacer cannot run here")
	}
	return nil
}

// doctorChecks registers the environment checks. The configuration is
// loaded once up front; src is only asked whether it is available, never
// started. canInject reports whether synthetic keys can be sent.
func doctorChecks(cf *configFlags, src keystroke.Source, canInject func() (bool, string)) *health.Checker {
	c := health.NewChecker()
	loader, cfg, cfgErr := cf.load()

	c.RegisterFunc("config", true, func(ctx context.Context) health.CheckResult {
		if cfgErr != nil {
			return health.Unhealthy("configuration invalid", cfgErr)
		}
		where := loader.Path()
		if where == "" {
			where = "command line"
		}
		return health.Healthy(fmt.Sprintf("%d rules from %s", cfg.Mapping().Len(), where))
	})

	c.RegisterFunc("keyboard hook", true, func(ctx context.Context) health.CheckResult {
		if ok, reason := src.Available(); !ok {
			return health.Unhealthy("cannot receive key events", errors.New(reason))
		}
		return health.Healthy("available")
	})

	c.RegisterFunc("key injection", true, func(ctx context.Context) health.CheckResult {
		ok, detail := canInject()
		if !ok {
			return health.Unhealthy("cannot send key events", errors.New(detail))
		}
		return health.Healthy(detail)
	})

	c.RegisterFunc("instance lock", false, func(ctx context.Context) health.CheckResult {
		l, err := lock.Acquire(filepath.Join(config.PlatformRuntimeDir(), lock.FileName))
		if errors.Is(err, lock.ErrLocked) {
			return health.Degraded(err.Error())
		}
		if err != nil {
			return health.Unhealthy("cannot create lock file", err)
		}
		l.Release()
		return health.Healthy("free")
	})

	c.RegisterFunc("notifications", false, func(ctx context.Context) health.CheckResult {
		d, err := notify.Connect()
		if err != nil {
			return health.Degraded("unavailable, messages go to the log only")
		}
		d.Close()
		return health.Healthy("notification service found")
	})

	c.RegisterFunc("statistics", false, func(ctx context.Context) health.CheckResult {
		sc := cfg
		if sc == nil {
			sc = config.DefaultConfig()
			if err := sc.ApplyEnvOverrides(); err != nil {
				return health.Unhealthy("bad environment", err)
			}
		}
		if !sc.Stats.Enabled {
			return health.Healthy("disabled")
		}
		st, err := store.Open(sc.StatsPath())
		if err != nil {
			return health.Unhealthy("cannot open database", err)
		}
		st.Close()
		return health.Healthy(sc.StatsPath())
	})

	return c
}
