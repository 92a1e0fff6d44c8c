package render

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// Minifier collapses whitespace, removes comments and minifies embedded CSS and JS.
type Minifier struct {
	m *minify.M
}

// NewMinifier returns a minifier that keeps document structure tags and end
// tags, so </body> survives for live-reload injection.
func NewMinifier() *Minifier {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	return &Minifier{m: m}
}

// HTML minifies a full HTML document.
func (m *Minifier) HTML(in []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := m.m.Minify("text/html", &out, bytes.NewReader(in)); err != nil {
		return nil, fmt.Errorf("minify html: %w", err)
	}
	return out.Bytes(), nil
}
