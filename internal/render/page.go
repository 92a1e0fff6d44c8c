package render

import (
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/logfields"
	"git.home.luguber.info/inful/tutorialbuilder/internal/metadata"
	"git.home.luguber.info/inful/tutorialbuilder/internal/treecopy"
)

// Outcome describes what RenderUnit did with a directory.
type Outcome string

const (
	// OutcomeNotAUnit means the directory has no content file and was skipped.
	OutcomeNotAUnit Outcome = "not_a_unit"
	// OutcomeFresh means the generated page is up to date.
	OutcomeFresh Outcome = "fresh"
	// OutcomeRendered means the page was regenerated.
	OutcomeRendered Outcome = "rendered"
)

// UnitResult reports a RenderUnit call.
type UnitResult struct {
	Outcome Outcome
	// Images counts files mirrored from the unit's img directory.
	Images treecopy.Stats
	// Warnings are recovered conditions: metadata or highlight fallbacks.
	Warnings []error
}

// RenderUnit renders one tutorial unit directory into unitDstDir.
//
// Directories without a content file are not units and produce nothing. The
// page is regenerated when the content file, the shared template or the
// metadata file is newer than the existing page. Errors abort this unit only.
func (s *Session) RenderUnit(unitSrcDir, unitDstDir string) (UnitResult, error) {
	r := s.r
	unit := filepath.Base(unitSrcDir)
	var res UnitResult

	contentPath := filepath.Join(unitSrcDir, r.cfg.Build.ContentFile)
	ok, err := exists(contentPath)
	if err != nil {
		return res, unitFSError(err, "stat content file", unit, contentPath)
	}
	if !ok {
		res.Outcome = OutcomeNotAUnit
		r.logger.Debug("Skipping directory without content file", logfields.Unit(unit))
		return res, nil
	}

	imgSrc := filepath.Join(unitSrcDir, ImageDir)
	if info, err := os.Stat(imgSrc); err == nil && info.IsDir() {
		res.Images, err = r.copier.CopyTree(imgSrc, filepath.Join(unitDstDir, ImageDir))
		if err != nil {
			return res, err
		}
	}

	dstPath := filepath.Join(unitDstDir, OutputFile)
	deps := []string{contentPath, s.templatePath}
	metaPath := r.loader.Path(unitSrcDir)
	if ok, _ := exists(metaPath); ok {
		deps = append(deps, metaPath)
	}
	stale, err := r.oracle.AnyStale(dstPath, deps...)
	if err != nil {
		return res, unitFSError(err, "check staleness", unit, dstPath)
	}
	if !stale {
		res.Outcome = OutcomeFresh
		return res, nil
	}

	rec, warn := r.loader.Load(unitSrcDir)
	if warn != nil {
		res.Warnings = append(res.Warnings, warn)
	}

	raw, err := os.ReadFile(contentPath) // #nosec G304 -- configured source tree
	if err != nil {
		return res, unitFSError(err, "read content file", unit, contentPath)
	}
	fields, body, err := metadata.SplitFrontmatter(raw)
	if err != nil {
		res.Warnings = append(res.Warnings, ferrors.MetadataWarning("frontmatter unparsable, ignored").
			WithCause(err).WithContext("unit", unit).Build())
		r.logger.Warn("Ignoring unparsable frontmatter", logfields.Unit(unit), logfields.Error(err))
	}
	rec.Merge(fields)

	author := r.cfg.Render.DefaultAuthor
	rec.SetDefaultAuthor(author.Name, author.URL)

	info, err := os.Stat(contentPath)
	if err != nil {
		return res, unitFSError(err, "stat content file", unit, contentPath)
	}
	rec.SetLastEdited(info.ModTime(), r.cfg.Render.DateLayout)
	rec.SetUnit(unit)

	html, err := r.converter.Convert(body)
	if err != nil {
		return res, ferrors.RenderError("convert markdown").WithCause(err).
			WithContext("unit", unit).Build()
	}
	html, hlWarnings := r.highlighter.EnhanceCodeBlocks(html)
	for _, w := range hlWarnings {
		if ce, ok := ferrors.AsClassified(w); ok {
			w = ce.WithContext("unit", unit)
		}
		res.Warnings = append(res.Warnings, w)
	}

	rec[metadata.FieldContent] = string(html)
	rec[metadata.FieldSharedCSS] = s.sharedCSS
	rec[metadata.FieldHighlightCSS] = s.highlightCSS
	rec[metadata.FieldSiteTitle] = r.cfg.Render.SiteTitle

	page, err := Merge(s.tpl, rec)
	if err != nil {
		return res, ferrors.WrapError(err, ferrors.CategoryTemplate, "merge page template").
			WithContext("unit", unit).Build()
	}
	page, err = r.minifier.HTML(page)
	if err != nil {
		return res, ferrors.RenderError("minify page").WithCause(err).
			WithContext("unit", unit).Build()
	}
	if err := writeAtomic(dstPath, page); err != nil {
		return res, unitFSError(err, "write page", unit, dstPath)
	}

	res.Outcome = OutcomeRendered
	r.logger.Info("Rendered unit", logfields.Unit(unit), logfields.Dest(dstPath))
	return res, nil
}

func unitFSError(err error, msg, unit, path string) error {
	return ferrors.FileSystemError(msg).WithCause(err).
		WithContext("unit", unit).
		WithContext("path", path).Build()
}
