package build

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/tutorialbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/logfields"
	"git.home.luguber.info/inful/tutorialbuilder/internal/metrics"
	"git.home.luguber.info/inful/tutorialbuilder/internal/render"
	"git.home.luguber.info/inful/tutorialbuilder/internal/staleness"
)

// Builder runs full builds of the configured source tree. It is safe to call
// Build from several goroutines; builds are serialized.
type Builder struct {
	cfg      *config.Config
	renderer *render.Renderer
	recorder metrics.Recorder
	logger   *slog.Logger
	mu       sync.Mutex
}

// New creates a builder and the renderer it drives.
func New(cfg *config.Config) (*Builder, error) {
	r, err := render.New(cfg, staleness.New(cfg.Build.MissingSource))
	if err != nil {
		return nil, err
	}
	return &Builder{
		cfg:      cfg,
		renderer: r,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}, nil
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// WithLogger sets a custom logger on the builder and renderer.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	b.renderer.WithLogger(logger)
	return b
}

// Config returns the configuration the builder was created with.
func (b *Builder) Config() *config.Config { return b.cfg }

// Build performs one full build pass. The returned error is non-nil only for
// run-fatal failures and cancellation; per-unit failures are in the report.
// The report is never nil.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	report := newReport()
	log := b.logger.With(logfields.BuildID(report.BuildID))
	srcRoot := b.cfg.SourceRoot()
	dstRoot := b.cfg.DestRoot()
	log.Info("Build started", logfields.Source(srcRoot), logfields.Dest(dstRoot))

	err := b.run(ctx, log, report, srcRoot, dstRoot)
	canceled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	if err != nil && !canceled {
		report.Errors = append(report.Errors, err)
	}
	report.finish(err, canceled)

	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(report.Outcome))

	attrs := []any{
		slog.Int("rendered", report.UnitsRendered),
		slog.Int("fresh", report.UnitsFresh),
		slog.Int("failed", report.UnitsFailed),
		slog.Int("warnings", len(report.Warnings)),
		logfields.Outcome(string(report.Outcome)),
		logfields.DurationMS(float64(report.Duration().Milliseconds())),
	}
	if err != nil {
		log.Error("Build aborted", append(attrs, logfields.Error(err))...)
	} else {
		log.Info("Build finished", attrs...)
	}
	return report, err
}

func (b *Builder) run(ctx context.Context, log *slog.Logger, report *Report, srcRoot, dstRoot string) error {
	var session *render.Session
	err := b.stage(report, StagePrepare, func() error {
		if err := os.MkdirAll(dstRoot, 0o750); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create destination root").
				Fatal().WithContext("path", dstRoot).Build()
		}
		var err error
		session, err = b.renderer.Prepare(
			filepath.Join(srcRoot, b.cfg.Build.TemplateFile),
			filepath.Join(srcRoot, b.cfg.Build.StylesheetFile),
		)
		return err
	})
	if err != nil {
		return err
	}

	_ = b.stage(report, StageIndex, func() error {
		wrote, err := session.RenderIndex(
			filepath.Join(srcRoot, b.cfg.Build.IndexFile),
			filepath.Join(dstRoot, render.OutputFile),
		)
		if err != nil {
			report.Errors = append(report.Errors, err)
			log.Error("Index render failed", logfields.Error(err))
			return err
		}
		report.IndexRendered = wrote
		return nil
	})

	_ = b.stage(report, StageAssets, func() error {
		var firstErr error
		for _, dir := range b.cfg.Build.SharedDirs {
			src := filepath.Join(srcRoot, dir)
			if info, err := os.Stat(src); err != nil || !info.IsDir() {
				continue
			}
			stats, err := b.renderer.Copier().CopyTree(src, filepath.Join(dstRoot, dir))
			report.FilesCopied += stats.Copied
			report.FilesSkipped += stats.Skipped
			b.recorder.AddFilesCopied(stats.Copied)
			if err != nil {
				report.Errors = append(report.Errors, err)
				log.Error("Shared asset copy failed", logfields.Path(src), logfields.Error(err))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		return firstErr
	})

	err = b.stage(report, StageUnits, func() error {
		names, err := ListUnitDirs(srcRoot, b.cfg.Build.SharedDirs)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "list source root").
				Fatal().WithContext("path", srcRoot).Build()
		}
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.buildUnit(log, report, session, name, srcRoot, dstRoot)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if b.cfg.Build.Prune {
		var res PruneResult
		err = b.stage(report, StagePrune, func() error {
			var err error
			res, err = b.prune(ctx, log, false)
			return err
		})
		report.Pruned = len(res.Removed)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			report.Errors = append(report.Errors, err)
		}
	}
	return nil
}

func (b *Builder) buildUnit(log *slog.Logger, report *Report, session *render.Session, name, srcRoot, dstRoot string) {
	res, err := session.RenderUnit(filepath.Join(srcRoot, name), filepath.Join(dstRoot, name))
	report.FilesCopied += res.Images.Copied
	report.FilesSkipped += res.Images.Skipped
	b.recorder.AddFilesCopied(res.Images.Copied)
	report.Warnings = append(report.Warnings, res.Warnings...)

	if err != nil {
		report.UnitsFailed++
		report.Errors = append(report.Errors, err)
		b.recorder.IncUnitOutcome("failed")
		log.Error("Unit build failed", logfields.Unit(name), logfields.Error(err))
		return
	}
	b.recorder.IncUnitOutcome(string(res.Outcome))
	switch res.Outcome {
	case render.OutcomeRendered:
		report.UnitsRendered++
	case render.OutcomeFresh:
		report.UnitsFresh++
		log.Debug("Unit up to date", logfields.Unit(name))
	case render.OutcomeNotAUnit:
		report.UnitsSkipped++
	}
}

// stage times fn and records its duration and result.
func (b *Builder) stage(report *Report, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	report.StageDurations[name] = d
	b.recorder.ObserveStageDuration(name, d)

	result := metrics.ResultSuccess
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		result = metrics.ResultCanceled
	case ferrors.IsFatal(err):
		result = metrics.ResultFatal
	case err != nil:
		result = metrics.ResultWarning
	}
	b.recorder.IncStageResult(name, result)
	return err
}

// WriteReport persists report as JSON at path. The path must be outside the
// destination tree so reports never become part of the site.
func (b *Builder) WriteReport(report *Report, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "resolve report path").Build()
	}
	dst := b.cfg.DestRoot()
	if rel, err := filepath.Rel(dst, abs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ferrors.ValidationError("report path must be outside the destination tree").
			WithContext("path", abs).
			WithContext("destination", dst).Build()
	}
	if err := report.Persist(abs); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write build report").
			WithContext("path", abs).Build()
	}
	return nil
}
