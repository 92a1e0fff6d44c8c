package render

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/staleness"
	"git.home.luguber.info/inful/tutorialbuilder/internal/testutil"
)

func newSession(t *testing.T, site *testutil.Site) *Session {
	t.Helper()
	r, err := New(site.Cfg, staleness.New(site.Cfg.Build.MissingSource))
	require.NoError(t, err)
	s, err := r.Prepare(site.SrcPath(site.Cfg.Build.TemplateFile), site.SrcPath(site.Cfg.Build.StylesheetFile))
	require.NoError(t, err)
	return s
}

var whitespaceBetweenTags = regexp.MustCompile(`>\s{2,}<`)

func TestRenderUnit_ConcreteScenario(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("foo", "# Title\n\nSome text.", `{"title":"Foo"}`)

	res, err := newSession(t, site).RenderUnit(site.SrcPath("foo"), site.DestPath("foo"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeRendered, res.Outcome)
	assert.Empty(t, res.Warnings)

	page := site.Dest().Content("foo/index.html")
	assert.Regexp(t, `<h1 id="tut-[^"]*"[^>]*>Title</h1>`, page)
	assert.Contains(t, page, "Some text.")
	assert.Contains(t, page, "<title>Foo</title>")
	assert.False(t, whitespaceBetweenTags.MatchString(page), "page should be minified:\n%s", page)
	assert.NotContains(t, page, "<!-- edited -->")
	assert.Contains(t, page, "</body>")
}

func TestRenderUnit_NotAUnit(t *testing.T) {
	site := testutil.NewSite(t)
	site.WriteSource("notes/readme.txt", "not a tutorial")
	site.WriteSource("notes/img/a.png", "png")

	res, err := newSession(t, site).RenderUnit(site.SrcPath("notes"), site.DestPath("notes"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotAUnit, res.Outcome)
	site.Dest().AssertNotExists("notes")
}

func TestRenderUnit_FreshUntilDependencyTouched(t *testing.T) {
	deps := []string{"foo/index.md", "template.html", "foo/meta.json"}
	for _, dep := range deps {
		t.Run(dep, func(t *testing.T) {
			site := testutil.NewSite(t)
			site.AddUnit("foo", "# Title\n", `{"title":"Foo"}`)
			s := newSession(t, site)

			res, err := s.RenderUnit(site.SrcPath("foo"), site.DestPath("foo"))
			require.NoError(t, err)
			require.Equal(t, OutcomeRendered, res.Outcome)

			res, err = s.RenderUnit(site.SrcPath("foo"), site.DestPath("foo"))
			require.NoError(t, err)
			assert.Equal(t, OutcomeFresh, res.Outcome)

			site.TouchSource(dep, time.Hour)
			res, err = s.RenderUnit(site.SrcPath("foo"), site.DestPath("foo"))
			require.NoError(t, err)
			assert.Equal(t, OutcomeRendered, res.Outcome)
		})
	}
}

func TestRenderUnit_MetadataFallback(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("nometa", "# Hello\n", "")
	site.AddUnit("badmeta", "# Hello\n", `{"title": `)
	s := newSession(t, site)

	for _, unit := range []string{"nometa", "badmeta"} {
		res, err := s.RenderUnit(site.SrcPath(unit), site.DestPath(unit))
		require.NoError(t, err)
		assert.Equal(t, OutcomeRendered, res.Outcome)
		require.Len(t, res.Warnings, 1)
		assert.True(t, ferrors.HasCategory(res.Warnings[0], ferrors.CategoryMetadata))

		site.Dest().
			AssertFileContains(filepath.Join(unit, "index.html"), "Untitled").
			AssertFileContains(filepath.Join(unit, "index.html"), "Add a meta.json file")
	}
}

func TestRenderUnit_HighlightFallback(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("code", "```klingon\nQapla'\n```\n", `{"title":"Code"}`)

	res, err := newSession(t, site).RenderUnit(site.SrcPath("code"), site.DestPath("code"))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.True(t, ferrors.HasCategory(res.Warnings[0], ferrors.CategoryHighlight))
	unit, _ := ferrors.AsClassified(res.Warnings[0])
	got, _ := unit.Context().GetString("unit")
	assert.Equal(t, "code", got)

	site.Dest().
		AssertFileContains("code/index.html", `class="language-klingon"`).
		AssertFileContains("code/index.html", "Qapla")
}

func TestRenderUnit_CodeEntitiesNotDoubleEscaped(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("ent", "```go\nif a < b && c > d {}\n```\n", `{"title":"E"}`)

	_, err := newSession(t, site).RenderUnit(site.SrcPath("ent"), site.DestPath("ent"))
	require.NoError(t, err)

	page := site.Dest().Content("ent/index.html")
	assert.Contains(t, page, `class="language-go"`)
	assert.NotContains(t, page, "&amp;lt;")
	assert.NotContains(t, page, "&amp;amp;")
	assert.Contains(t, codeText(t, page), "if a < b && c > d {}")
}

// codeText returns the decoded text of every <code> element in page.
func codeText(t *testing.T, page string) string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)

	var b strings.Builder
	var walk func(n *html.Node, inCode bool)
	walk = func(n *html.Node, inCode bool) {
		if n.Type == html.ElementNode && n.Data == "code" {
			inCode = true
		}
		if inCode && n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inCode)
		}
	}
	walk(doc, false)
	return b.String()
}

func TestRenderUnit_FrontmatterOverridesMetaFile(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("fm", "---\ntitle: From Frontmatter\n---\n# Body\n", `{"title":"From Meta","subtitle":"kept"}`)

	res, err := newSession(t, site).RenderUnit(site.SrcPath("fm"), site.DestPath("fm"))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	site.Dest().
		AssertFileContains("fm/index.html", "<title>From Frontmatter</title>").
		AssertFileContains("fm/index.html", "kept").
		AssertFileNotContains("fm/index.html", "title: From Frontmatter")
}

func TestRenderUnit_HeadingBetweenThematicBreaksIsRendered(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("hr", "---\n# Getting Started\n---\n\nSome text.\n", `{"title":"HR"}`)

	res, err := newSession(t, site).RenderUnit(site.SrcPath("hr"), site.DestPath("hr"))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	site.Dest().
		AssertFileContains("hr/index.html", "Getting Started").
		AssertFileContains("hr/index.html", "<hr").
		AssertFileContains("hr/index.html", "Some text.")
}

func TestRenderUnit_CopiesImages(t *testing.T) {
	site := testutil.NewSite(t)
	site.AddUnit("pics", "![x](img/a.png =10x20)\n", `{"title":"P"}`)
	site.WriteSource("pics/img/a.png", "png-bytes")

	res, err := newSession(t, site).RenderUnit(site.SrcPath("pics"), site.DestPath("pics"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Images.Copied)

	site.Dest().
		AssertFileContains("pics/img/a.png", "png-bytes").
		AssertFileContains("pics/index.html", `width="10"`)
}

func TestRenderUnit_TemplateErrorAbortsUnit(t *testing.T) {
	site := testutil.NewSite(t)
	site.WriteSource("template.html", `{{.title.missing.deeper}}`)
	site.AddUnit("foo", "# x\n", `{"title":"Foo"}`)

	_, err := newSession(t, site).RenderUnit(site.SrcPath("foo"), site.DestPath("foo"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTemplate))
	site.Dest().AssertNotExists("foo/index.html")
}

func TestRenderUnit_UnreadableContentIsFileSystemError(t *testing.T) {
	site := testutil.NewSite(t)
	require.NoError(t, os.MkdirAll(site.SrcPath("foo", site.Cfg.Build.ContentFile), 0o750))

	_, err := newSession(t, site).RenderUnit(site.SrcPath("foo"), site.DestPath("foo"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
	assert.False(t, ferrors.IsFatal(err))
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	unit, _ := ce.Context().GetString("unit")
	assert.Equal(t, "foo", unit)
}

func TestPrepare_Failures(t *testing.T) {
	site := testutil.NewSite(t)
	r, err := New(site.Cfg, staleness.New(site.Cfg.Build.MissingSource))
	require.NoError(t, err)

	_, err = r.Prepare(site.SrcPath("missing.html"), site.SrcPath("style.css"))
	require.Error(t, err)
	assert.True(t, ferrors.IsFatal(err))
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))

	_, err = r.Prepare(site.SrcPath("template.html"), site.SrcPath("missing.css"))
	require.Error(t, err)
	assert.True(t, ferrors.IsFatal(err))

	site.WriteSource("broken.html", "{{.title")
	_, err = r.Prepare(site.SrcPath("broken.html"), site.SrcPath("style.css"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTemplate))
}

func TestRenderIndex(t *testing.T) {
	site := testutil.NewSite(t)
	s := newSession(t, site)
	src := site.SrcPath("index.html")
	dst := site.DestPath("index.html")

	wrote, err := s.RenderIndex(src, dst)
	require.NoError(t, err)
	assert.True(t, wrote)

	page := site.Dest().Content("index.html")
	assert.Contains(t, page, "<title>Tutorials</title>")
	assert.Contains(t, page, "body{margin:0}")
	assert.False(t, whitespaceBetweenTags.MatchString(page))

	wrote, err = s.RenderIndex(src, dst)
	require.NoError(t, err)
	assert.False(t, wrote, "second render is gated by staleness")
}

func TestRenderIndex_MissingSourceSkipped(t *testing.T) {
	site := testutil.NewSite(t)
	wrote, err := newSession(t, site).RenderIndex(site.SrcPath("nope.html"), site.DestPath("index.html"))
	require.NoError(t, err)
	assert.False(t, wrote)
}
