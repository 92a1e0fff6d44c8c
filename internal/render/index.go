package render

import (
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/logfields"
	"git.home.luguber.info/inful/tutorialbuilder/internal/metadata"
)

// RenderIndex renders the top-level listing page. The source is itself a
// template; it sees the shared stylesheets and the site title but no markdown
// conversion takes place. It reports whether the page was written.
func (s *Session) RenderIndex(srcIndex, dstIndex string) (bool, error) {
	r := s.r

	stale, err := r.oracle.IsStale(srcIndex, dstIndex)
	if err != nil {
		return false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "check index staleness").
			WithContext("path", srcIndex).Build()
	}
	if !stale {
		return false, nil
	}

	text, err := os.ReadFile(srcIndex) // #nosec G304 -- configured source tree
	if err != nil {
		return false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read index source").
			WithContext("path", srcIndex).Build()
	}
	tpl, err := ParseTemplate(filepath.Base(srcIndex), string(text))
	if err != nil {
		return false, ferrors.WrapError(err, ferrors.CategoryTemplate, "parse index source").
			WithContext("path", srcIndex).Build()
	}

	page, err := Merge(tpl, map[string]any{
		metadata.FieldSharedCSS:    s.sharedCSS,
		metadata.FieldHighlightCSS: s.highlightCSS,
		metadata.FieldSiteTitle:    r.cfg.Render.SiteTitle,
	})
	if err != nil {
		return false, ferrors.WrapError(err, ferrors.CategoryTemplate, "merge index").
			WithContext("path", srcIndex).Build()
	}
	page, err = r.minifier.HTML(page)
	if err != nil {
		return false, ferrors.RenderError("minify index").WithCause(err).Build()
	}
	if err := writeAtomic(dstIndex, page); err != nil {
		return false, ferrors.FileSystemError("write index").WithCause(err).
			WithContext("path", dstIndex).Build()
	}

	r.logger.Info("Rendered index", logfields.Dest(dstIndex))
	return true, nil
}
