package linkverify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

func TestExtractLinksFromReader(t *testing.T) {
	links, err := ExtractLinksFromReader(strings.NewReader(`<html><head>
<link rel="stylesheet" href="/lib/site.css"><script src="app.js"></script></head>
<body><a href="../bar/">Bar</a><img src="img/a.png" alt="a"><a>no href</a></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, []Link{
		{URL: "/lib/site.css", Tag: "link", Attribute: "href"},
		{URL: "app.js", Tag: "script", Attribute: "src"},
		{URL: "../bar/", Tag: "a", Attribute: "href"},
		{URL: "img/a.png", Tag: "img", Attribute: "src"},
	}, links)
}

func TestVerifySite(t *testing.T) {
	root := t.TempDir()
	write(t, root, "index.html", `<a href="/foo/">Foo</a><a href="bar/index.html">Bar</a><a href="/missing/">M</a><a href="https://example.com/x">ext</a><a href="mailto:a@b.c">m</a><a href="#top">top</a>`)
	write(t, root, "foo/index.html", `<img src="img/a.png"><img src="img/gone.png"><a href="../index.html#intro">home</a><a href="../../etc/passwd">x</a><a href="/lib/">lib</a>`)
	write(t, root, "foo/img/a.png", "png")
	write(t, root, "bar/index.html", `<a href="/foo/index.html?x=1">ok</a>`)
	write(t, root, "lib/app.js", "")
	write(t, root, ".tmp/page.html", `<a href="/nowhere">hidden pages are skipped</a>`)

	broken, err := VerifySite(root)
	require.NoError(t, err)

	got := map[string]string{}
	for _, b := range broken {
		got[b.Page+" -> "+b.Link.URL] = b.Reason
	}
	assert.Equal(t, map[string]string{
		"index.html -> /missing/":            "not found",
		"foo/index.html -> img/gone.png":     "not found",
		"foo/index.html -> ../../etc/passwd": "outside site",
		"foo/index.html -> /lib/":            "directory without index.html",
	}, got)
}

func TestVerifySite_MissingRoot(t *testing.T) {
	_, err := VerifySite(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
