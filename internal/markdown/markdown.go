// Package markdown converts tutorial content to HTML with goldmark.
//
// The converter is built once per build and reused for every unit. Output for
// fenced code is goldmark's stable `<pre><code class="language-X">` shape, which
// the highlight package relies on.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Converter renders markdown to HTML.
type Converter struct {
	md   goldmark.Markdown
	opts Options
}

// New builds a converter with heading-ID prefixing, sized images, bare URL
// autolinking, strikethrough, tables and table classes enabled. Raw HTML in the
// source is passed through.
func New(opts Options) *Converter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Strikethrough,
			extension.Table,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithInlineParsers(
				util.Prioritized(&sizedImageParser{}, 199),
			),
			parser.WithASTTransformers(
				util.Prioritized(&tableClassTransformer{class: opts.TableClass}, 500),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Converter{md: md, opts: opts}
}

// Convert renders source to HTML. Heading IDs are unique within one call.
func (c *Converter) Convert(source []byte) ([]byte, error) {
	ctx := parser.NewContext(parser.WithIDs(newPrefixedIDs(c.opts.AnchorPrefix)))

	var buf bytes.Buffer
	if err := c.md.Convert(source, &buf, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}
