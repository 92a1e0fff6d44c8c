package build

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/logfields"
	"git.home.luguber.info/inful/tutorialbuilder/internal/render"
)

// PruneResult lists destination entries that were (or, in a dry run, would be) removed.
type PruneResult struct {
	// Removed holds slash-separated paths relative to the destination root.
	Removed []string
	DryRun  bool
}

// Prune removes destination entries that no longer have a source: unit
// directories whose source unit is gone or has no content file, and files and
// directories under mirrored asset directories (shared dirs and each unit's
// img/) without a source counterpart. The root index page, hidden entries and
// paths listed in build.keep are never removed.
func (b *Builder) Prune(ctx context.Context, dryRun bool) (PruneResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.prune(ctx, b.logger, dryRun)
}

type pruner struct {
	ctx     context.Context
	srcRoot string
	dstRoot string
	keep    []string
	dryRun  bool
	logger  *slog.Logger
	result  PruneResult
}

func (b *Builder) prune(ctx context.Context, logger *slog.Logger, dryRun bool) (PruneResult, error) {
	p := &pruner{
		ctx:     ctx,
		srcRoot: b.cfg.SourceRoot(),
		dstRoot: b.cfg.DestRoot(),
		keep:    b.cfg.Build.Keep,
		dryRun:  dryRun,
		logger:  logger,
		result:  PruneResult{DryRun: dryRun},
	}

	entries, err := os.ReadDir(p.dstRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p.result, nil
		}
		return p.result, ferrors.WrapError(err, ferrors.CategoryFileSystem, "list destination root").
			WithContext("path", p.dstRoot).Build()
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return p.result, err
		}
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		if slices.Contains(b.cfg.Build.SharedDirs, name) {
			err = p.mirror(name)
		} else if _, statErr := os.Stat(filepath.Join(p.srcRoot, name, b.cfg.Build.ContentFile)); statErr != nil {
			err = p.remove(name)
		} else {
			err = p.mirror(filepath.Join(name, render.ImageDir))
		}
		if err != nil {
			return p.result, err
		}
	}

	logger.Info("Prune finished", logfields.Count(len(p.result.Removed)), slog.Bool("dry_run", dryRun))
	return p.result, nil
}

// mirror removes everything under dstRoot/rel that has no counterpart under srcRoot/rel.
func (p *pruner) mirror(rel string) error {
	entries, err := os.ReadDir(filepath.Join(p.dstRoot, rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "list destination directory").
			WithContext("path", filepath.Join(p.dstRoot, rel)).Build()
	}
	for _, e := range entries {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		child := filepath.Join(rel, e.Name())
		info, statErr := os.Stat(filepath.Join(p.srcRoot, child))
		switch {
		case statErr != nil || info.IsDir() != e.IsDir():
			err = p.remove(child)
		case e.IsDir():
			err = p.mirror(child)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// remove deletes dstRoot/rel unless it is kept or holds a kept path.
func (p *pruner) remove(rel string) error {
	slashRel := filepath.ToSlash(rel)
	if slashRel == render.OutputFile {
		return nil
	}
	for _, k := range p.keep {
		k = strings.Trim(filepath.ToSlash(k), "/")
		if k == slashRel || strings.HasPrefix(k, slashRel+"/") {
			p.logger.Debug("Keeping pruned candidate", logfields.Path(slashRel))
			return nil
		}
	}

	p.result.Removed = append(p.result.Removed, slashRel)
	if p.dryRun {
		p.logger.Info("Would remove", logfields.Path(slashRel))
		return nil
	}
	if err := os.RemoveAll(filepath.Join(p.dstRoot, rel)); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "remove orphaned path").
			WithContext("path", slashRel).Build()
	}
	p.logger.Info("Removed orphaned path", logfields.Path(slashRel))
	return nil
}
