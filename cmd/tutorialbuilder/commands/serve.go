package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/tutorialbuilder/internal/metrics"
	"git.home.luguber.info/inful/tutorialbuilder/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port            int           `short:"p" help:"HTTP port (overrides serve.port)"`
	NoLiveReload    bool          `name:"no-live-reload" help:"Disable browser live reload"`
	RebuildInterval time.Duration `name:"rebuild-interval" help:"Also rebuild on this interval, e.g. 10m (overrides serve.rebuild_interval)"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}

	opts := preview.OptionsFromConfig(cfg)
	if s.Port != 0 {
		opts.Port = s.Port
	}
	if s.NoLiveReload {
		opts.LiveReload = false
	}
	if s.RebuildInterval > 0 {
		opts.RebuildInterval = s.RebuildInterval
	}

	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	builder, err := newBuilder(cfg, g, rec)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return preview.New(builder, cfg, opts).
		WithLogger(g.Logger).
		WithMetrics(reg, rec).
		Run(ctx)
}
