package markdown

import (
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// tableClassTransformer sets a class attribute on every table node.
type tableClassTransformer struct {
	class string
}

func (t *tableClassTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	if t.class == "" {
		return
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*east.Table); ok {
			n.SetAttributeString("class", []byte(t.class))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
}
