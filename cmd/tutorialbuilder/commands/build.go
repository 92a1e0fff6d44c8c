package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Prune  bool   `help:"Remove stale destination files after building"`
	Report string `help:"Write a JSON build report to FILE (must be outside the destination)" placeholder:"FILE" type:"path"`
	Check  bool   `help:"Verify internal links after building"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if b.Prune {
		cfg.Build.Prune = true
	}
	builder, err := newBuilder(cfg, g, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, buildErr := builder.Build(ctx)
	if b.Report != "" {
		if err := builder.WriteReport(report, b.Report); err != nil {
			if buildErr == nil {
				return err
			}
			g.Logger.Error("Failed to write build report", logfields.Error(err))
		}
	}
	if buildErr != nil {
		if errors.Is(buildErr, context.Canceled) {
			return ferrors.RuntimeError("build interrupted").WithCause(buildErr).Build()
		}
		return buildErr
	}
	for _, e := range report.Errors {
		g.Logger.Warn("Unit failed", logfields.Error(e))
	}
	_, _ = fmt.Fprintln(g.Out, report.Summary())

	if b.Check {
		return checkSite(g, cfg.DestRoot())
	}
	return nil
}
