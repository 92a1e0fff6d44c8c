package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
)

// PruneCmd implements the 'prune' command.
type PruneCmd struct {
	DryRun bool `name:"dry-run" help:"List what would be removed without deleting"`
}

func (p *PruneCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	builder, err := newBuilder(cfg, g, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := builder.Prune(ctx, p.DryRun)
	if err != nil {
		return err
	}
	verb := "removed"
	if res.DryRun {
		verb = "would remove"
	}
	for _, path := range res.Removed {
		_, _ = fmt.Fprintf(g.Out, "%s %s\n", verb, path)
	}
	_, _ = fmt.Fprintf(g.Out, "prune: %s %d path(s)\n", verb, len(res.Removed))
	return nil
}
