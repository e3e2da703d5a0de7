package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"textreplacer/internal/config"
	"textreplacer/internal/engine"
	"textreplacer/internal/inject"
	"textreplacer/internal/keystroke"
	"textreplacer/internal/lock"
	"textreplacer/internal/logging"
	"textreplacer/internal/notify"
	"textreplacer/internal/store"
)

func cmdRun(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("run", stderr)
	var cf configFlags
	cf.register(fs)
	watch := fs.Bool("watch", false, "Reload the config file when it changes")
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

	lc, err := cfg.LoggerConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(lc)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer logger.Close()
	logging.SetDefault(logger)

	printRules(stdout, table)

	lk, err := lock.Acquire(filepath.Join(config.PlatformRuntimeDir(), lock.FileName))
	if err != nil {
		return err
	}
	defer lk.Release()

	src := keystroke.New()
	if ok, reason := src.Available(); !ok {
		return fmt.Errorf("%w: %s", keystroke.ErrNotAvailable, reason)
	}

	kb, err := inject.New(inject.Options{PasteFallback: cfg.Engine.PasteFallback})
	if err != nil {
		return err
	}

	notifier := notify.New(cfg.Notify.Enabled, logger.Logger)
	defer notifier.Close()

	opts := []engine.Option{
		engine.WithLogger(logger.WithComponent("engine").Logger),
	}

	if cfg.Stats.Enabled {
		st, err := store.Open(cfg.StatsPath())
		if err != nil {
			return err
		}
		defer st.Close()

		collector := store.NewCollector(st, logger.WithComponent("stats").Logger)
		defer collector.Close()
		opts = append(opts, engine.WithReporter(collector))
	}

	eng := engine.New(table, kb, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watch {
		if err := watchConfig(ctx, loader, eng, notifier, logger); err != nil {
			return err
		}
		defer loader.Close()
	}

	if err := notifier.Send(notify.Message{
		Summary: "textreplacer running",
		Body:    fmt.Sprintf("%d replacements active", table.Len()),
		Urgency: notify.Low,
		Timeout: 3 * time.Second,
	}); err != nil {
		logger.Debug("startup notification", "error", err)
	}

	crash := logging.NewCrashHandler(&logging.CrashHandlerConfig{
		Version:   version,
		Component: "engine",
		OnCrash: func(r logging.CrashReport) {
			logger.Error("engine crashed", "panic", r.PanicValue)
		},
	})
	if err := crash.CleanupOldCrashReports(30 * 24 * time.Hour); err != nil {
		logger.Debug("crash report cleanup", "error", err)
	}

	logger.Info("textreplacer started", "version", version, "rules", table.Len(), "config", loader.Path())
	return crash.Recover(map[string]string{"rules": strconv.Itoa(table.Len())}, func() error {
		return eng.Run(ctx, src)
	})
}

// watchConfig reloads the rule table whenever the config file changes. A
// reload that fails keeps the current rules and is reported.
func watchConfig(ctx context.Context, loader *config.Loader, eng *engine.Engine, n notify.Sender, logger *logging.Logger) error {
	if loader.Path() == "" {
		logger.Warn("no config file to watch")
		return nil
	}

	log := logger.WithComponent("config")
	loader.OnChange(func(c *config.Config) {
		t, err := c.Table()
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		eng.Reload(t)
	})

	if err := loader.Watch(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-loader.Errors():
				log.Warn("config not reloaded", "error", err)
				n.Send(notify.Message{
					Summary: "textreplacer: config not reloaded",
					Body:    err.Error(),
					Urgency: notify.Normal,
				})
			}
		}
	}()
	return nil
}
