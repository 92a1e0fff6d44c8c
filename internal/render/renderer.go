package render

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"git.home.luguber.info/inful/tutorialbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/highlight"
	"git.home.luguber.info/inful/tutorialbuilder/internal/markdown"
	"git.home.luguber.info/inful/tutorialbuilder/internal/metadata"
	"git.home.luguber.info/inful/tutorialbuilder/internal/staleness"
	"git.home.luguber.info/inful/tutorialbuilder/internal/treecopy"
)

// OutputFile is the name of the generated page in every unit directory.
const OutputFile = "index.html"

// ImageDir is the per-unit image directory mirrored next to the page.
const ImageDir = "img"

// Renderer owns the collaborators shared by every page: converter,
// highlighter, minifier, metadata loader and the staleness oracle. It is built
// once and reused across builds.
type Renderer struct {
	cfg         *config.Config
	oracle      *staleness.Oracle
	copier      *treecopy.Copier
	converter   *markdown.Converter
	highlighter *highlight.Highlighter
	loader      *metadata.Loader
	minifier    *Minifier
	logger      *slog.Logger
}

// New wires a renderer from configuration.
func New(cfg *config.Config, oracle *staleness.Oracle) (*Renderer, error) {
	hl, err := highlight.New(highlight.NewRegistry(highlight.DefaultLanguages), highlight.Options{
		NoHighlight: cfg.Render.NoHighlight,
		Fallback:    cfg.Render.FallbackLanguage,
		Style:       cfg.Render.HighlightStyle,
	})
	if err != nil {
		return nil, err
	}
	return &Renderer{
		cfg:    cfg,
		oracle: oracle,
		copier: treecopy.New(oracle),
		converter: markdown.New(markdown.Options{
			AnchorPrefix: cfg.Render.AnchorPrefix,
			TableClass:   cfg.Render.TableClass,
		}),
		highlighter: hl,
		loader:      metadata.NewLoader(cfg.Build.MetaFile),
		minifier:    NewMinifier(),
		logger:      slog.Default(),
	}, nil
}

// WithLogger sets a custom logger on the renderer and its collaborators.
func (r *Renderer) WithLogger(logger *slog.Logger) *Renderer {
	r.logger = logger
	r.copier.WithLogger(logger)
	r.highlighter.WithLogger(logger)
	r.loader.WithLogger(logger)
	return r
}

// Copier exposes the tree copier so the orchestrator mirrors shared assets
// with the same oracle.
func (r *Renderer) Copier() *treecopy.Copier { return r.copier }

// Session holds the shared inputs of one build: the compiled page template and
// the stylesheets. Units rendered through the same session reuse them.
type Session struct {
	r            *Renderer
	templatePath string
	tpl          *template.Template
	sharedCSS    string
	highlightCSS string
}

// Prepare loads the shared page template and stylesheet. Any failure here is
// fatal for the whole build.
func (r *Renderer) Prepare(templatePath, stylesheetPath string) (*Session, error) {
	text, err := os.ReadFile(templatePath) // #nosec G304 -- configured source tree
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read shared template").
			Fatal().WithContext("path", templatePath).Build()
	}
	tpl, err := ParseTemplate(filepath.Base(templatePath), string(text))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryTemplate, "parse shared template").
			Fatal().WithContext("path", templatePath).Build()
	}

	css, err := os.ReadFile(stylesheetPath) // #nosec G304 -- configured source tree
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read shared stylesheet").
			Fatal().WithContext("path", stylesheetPath).Build()
	}

	hlCSS, err := r.highlighter.CSS()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHighlight, "generate highlight stylesheet").Fatal().Build()
	}

	return &Session{
		r:            r,
		templatePath: templatePath,
		tpl:          tpl,
		sharedCSS:    string(css),
		highlightCSS: hlCSS,
	}, nil
}

// SharedCSS returns the shared stylesheet content.
func (s *Session) SharedCSS() string { return s.sharedCSS }

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
