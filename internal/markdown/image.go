package markdown

import (
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// sizedImagePattern matches ![alt](src =WxH "title"). Either dimension may be omitted.
var sizedImagePattern = regexp.MustCompile(`^!\[([^\]]*)\]\(\s*([^\s)]+)\s+=(\d*)x(\d*)(?:\s+"([^"]*)")?\s*\)`)

// sizedImageParser handles images carrying a size hint. Anything else falls
// through to goldmark's link parser.
type sizedImageParser struct{}

func (p *sizedImageParser) Trigger() []byte {
	return []byte{'!'}
}

func (p *sizedImageParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := sizedImagePattern.FindSubmatchIndex(line)
	if m == nil {
		return nil
	}
	group := func(i int) []byte {
		if m[2*i] < 0 {
			return nil
		}
		return line[m[2*i]:m[2*i+1]]
	}

	link := ast.NewLink()
	link.Destination = append([]byte(nil), group(2)...)
	link.Title = append([]byte(nil), group(5)...)
	img := ast.NewImage(link)
	img.AppendChild(img, ast.NewString(append([]byte(nil), group(1)...)))
	if w := group(3); len(w) > 0 {
		img.SetAttributeString("width", append([]byte(nil), w...))
	}
	if h := group(4); len(h) > 0 {
		img.SetAttributeString("height", append([]byte(nil), h...))
	}

	block.Advance(m[1])
	return img
}
