package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/tutorialbuilder/internal/build"
	"git.home.luguber.info/inful/tutorialbuilder/internal/config"
	"git.home.luguber.info/inful/tutorialbuilder/internal/metrics"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI is the root command model.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: ./tutorialbuilder.yaml when present)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build       BuildCmd   `cmd:"" default:"withargs" help:"Render all tutorial units into the destination tree (default)"`
	Serve       ServeCmd   `cmd:"" help:"Build, serve the destination tree and rebuild on source changes"`
	Prune       PruneCmd   `cmd:"" help:"Remove destination files whose sources no longer exist"`
	Check       CheckCmd   `cmd:"" help:"Verify internal links in the generated site"`
	ShowVersion VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing and installs a provisional logger.
// Commands refine it once the configuration is loaded.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig loads the configuration named by --config and applies its
// logging section unless --verbose already forced debug output.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	g.Logger = newLogger(cfg.Logging, c.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

func newLogger(lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := lc.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newBuilder(cfg *config.Config, g *Global, rec metrics.Recorder) (*build.Builder, error) {
	b, err := build.New(cfg)
	if err != nil {
		return nil, err
	}
	b.WithLogger(g.Logger)
	if rec != nil {
		b.WithRecorder(rec)
	}
	return b, nil
}
