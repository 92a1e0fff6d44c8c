package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/tutorialbuilder/internal/config"
)

// DefaultTemplate is a minimal page template using every field the renderer sets.
const DefaultTemplate = `<!DOCTYPE html>
<html>
  <head>
    <title>{{.title}}</title>
    <style>{{.sharedCSS}}</style>
  </head>
  <body>
    <header>
      <h1 class="page-title">{{.title}}</h1>
      <p class="subtitle">{{.subtitle}}</p>
      <!-- edited -->
      <p class="edited">Last edited {{.lastEdited}}</p>
    </header>
    <main>
      {{.content}}
    </main>
  </body>
</html>
`

// DefaultIndex is a minimal listing page source.
const DefaultIndex = `<!DOCTYPE html>
<html>
  <head><title>{{.siteTitle}}</title><style>{{.sharedCSS}}</style></head>
  <body>
    <ul>
      <li><a href="/foo/">Foo</a></li>
    </ul>
  </body>
</html>
`

// DefaultStylesheet is the shared stylesheet written by NewSite.
const DefaultStylesheet = "body {\n  margin: 0;\n}\n"

// Site is an on-disk source tree plus its destination root.
type Site struct {
	t    *testing.T
	Root string
	Cfg  *config.Config
}

// NewSite creates a temp directory with src/ holding the default template,
// stylesheet and index, and a config anchored at that directory.
func NewSite(t *testing.T) *Site {
	t.Helper()
	root := t.TempDir()
	s := &Site{t: t, Root: root, Cfg: config.Default().WithBaseDir(root)}
	s.WriteSource(s.Cfg.Build.TemplateFile, DefaultTemplate)
	s.WriteSource(s.Cfg.Build.StylesheetFile, DefaultStylesheet)
	s.WriteSource(s.Cfg.Build.IndexFile, DefaultIndex)
	return s
}

// SrcPath joins rel onto the source root.
func (s *Site) SrcPath(rel ...string) string {
	return filepath.Join(append([]string{s.Cfg.SourceRoot()}, rel...)...)
}

// DestPath joins rel onto the destination root.
func (s *Site) DestPath(rel ...string) string {
	return filepath.Join(append([]string{s.Cfg.DestRoot()}, rel...)...)
}

// WriteSource writes a file relative to the source root.
func (s *Site) WriteSource(rel, body string) string {
	s.t.Helper()
	return WriteFile(s.t, s.SrcPath(rel), body)
}

// AddUnit writes a unit with a content file and, when meta is non-empty, a meta.json.
func (s *Site) AddUnit(name, content, meta string) {
	s.t.Helper()
	s.WriteSource(filepath.Join(name, s.Cfg.Build.ContentFile), content)
	if meta != "" {
		s.WriteSource(filepath.Join(name, s.Cfg.Build.MetaFile), meta)
	}
}

// TouchSource moves the mtime of a source file forward by d from now.
func (s *Site) TouchSource(rel string, d time.Duration) {
	s.t.Helper()
	Touch(s.t, s.SrcPath(rel), time.Now().Add(d))
}

// Dest returns assertions rooted at the destination tree.
func (s *Site) Dest() *FileAssertions {
	return NewFileAssertions(s.t, s.Cfg.DestRoot())
}

// WriteFile creates parent directories and writes body to path.
func WriteFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Touch sets both timestamps of path.
func Touch(t *testing.T, path string, when time.Time) {
	t.Helper()
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}
