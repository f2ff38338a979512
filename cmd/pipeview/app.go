package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/pipeview"
	"github.com/aretw0/pipeview/internal/logging"
	"github.com/aretw0/pipeview/internal/metrics"
	"github.com/aretw0/pipeview/pkg/adapters/file"
	"github.com/aretw0/pipeview/pkg/adapters/memory"
	"github.com/aretw0/pipeview/pkg/adapters/redis"
	"github.com/aretw0/pipeview/pkg/ports"
)

// app bundles what every command builds from the persistent flags.
type app struct {
	logger   *slog.Logger
	source   *memory.Source
	settings ports.SettingsStore
	registry *prometheus.Registry
	viewer   *pipeview.Viewer
	project  string
	closers  []func() error
}

func newApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	debug, _ := flags.GetBool("debug")
	format, _ := flags.GetString("log-format")
	fixtures, _ := flags.GetString("fixtures")
	project, _ := flags.GetString("project")
	redisAddr, _ := flags.GetString("redis-addr")
	redisPassword, _ := flags.GetString("redis-password")
	redisDB, _ := flags.GetInt("redis-db")

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logFormat, err := logging.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	a := &app{
		logger:   logging.NewWithFormat(os.Stderr, logFormat, level),
		source:   memory.NewSource(),
		registry: prometheus.NewRegistry(),
		project:  project,
	}

	if fixtures != "" {
		loaded, err := file.LoadPath(fixtures)
		if err != nil {
			return nil, err
		}
		for _, fx := range loaded {
			fx.Seed(a.source)
			if a.project == "" {
				a.project = fx.Project
			}
		}
		a.logger.Debug("Fixtures loaded", "path", fixtures, "count", len(loaded))
	}

	if redisAddr != "" {
		store := redis.New(redisAddr, redisPassword, redisDB)
		if err := store.Ping(contextOf(cmd)); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", redisAddr, err)
		}
		a.settings = store
		a.closers = append(a.closers, store.Close)
	} else {
		a.settings = memory.NewStore()
	}

	collector, err := metrics.New(a.registry)
	if err != nil {
		return nil, err
	}
	a.viewer = pipeview.New(a.source,
		pipeview.WithSettings(a.settings),
		pipeview.WithLogger(a.logger),
		pipeview.WithRecorder(collector),
	)
	return a, nil
}

func (a *app) requireProject() error {
	if a.project == "" {
		return fmt.Errorf("no project: pass --project or --fixtures")
	}
	return nil
}

func (a *app) close() {
	a.viewer.Close()
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("Close failed", "err", err)
		}
	}
}

// outputProfile picks colored output only when stdout is a terminal.
func outputProfile() termenv.Profile {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return termenv.ColorProfile()
	}
	return termenv.Ascii
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func outputProfileIsPlain() bool {
	return outputProfile() == termenv.Ascii
}
