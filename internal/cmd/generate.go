package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/interopgen/internal/watcher"
)

type Generate struct {
	Source   `embed:""`
	Output   Output        `embed:"" prefix:"out."`
	Watch    bool          `help:"Regenerate whenever a descriptor file changes" env:"INTEROPGEN_WATCH"`
	Debounce time.Duration `help:"Quiet period before regenerating in watch mode" default:"200ms" env:"INTEROPGEN_DEBOUNCE"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger) error {
	if !g.Watch {
		return g.once(logger)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return g.watch(ctx, logger)
}

func (g *Generate) once(logger *slog.Logger) error {
	logger.Info("Starting interop generation", "modules", g.Modules, "entry", g.Entry)
	arts, err := g.generate(logger)
	if arts == nil {
		return err
	}
	if werr := arts.Write(logger, g.Output.Paths()); werr != nil {
		return errors.Join(err, werr)
	}
	logger.Info("Interop generation complete", "fingerprint", arts.Fingerprint())
	return err
}

func (g *Generate) watch(ctx context.Context, logger *slog.Logger) error {
	if err := g.once(logger); err != nil {
		logger.Error("Generation failed", "error", err)
	}
	m, err := g.matcher()
	if err != nil {
		return err
	}
	w, err := watcher.New(g.Modules, g.Debounce, m, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	logger.Info("Watching for descriptor changes", "dir", g.Modules, "debounce", g.Debounce)
	return w.Run(ctx, func(paths []string) {
		logger.Info("Descriptors changed", "files", len(paths))
		if err := g.once(logger); err != nil {
			logger.Error("Generation failed", "error", err)
		}
	})
}
