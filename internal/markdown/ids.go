package markdown

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
)

// prefixedIDs implements parser.IDs with GitHub-style slugs and a fixed prefix.
type prefixedIDs struct {
	prefix string
	used   map[string]struct{}
}

func newPrefixedIDs(prefix string) *prefixedIDs {
	return &prefixedIDs{prefix: prefix, used: map[string]struct{}{}}
}

func (p *prefixedIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	base := p.prefix + slugify(string(value))
	if base == p.prefix {
		base = p.prefix + "heading"
	}
	id := base
	for i := 1; ; i++ {
		if _, taken := p.used[id]; !taken {
			break
		}
		id = base + "-" + strconv.Itoa(i)
	}
	p.used[id] = struct{}{}
	return []byte(id)
}

func (p *prefixedIDs) Put(value []byte) {
	p.used[string(value)] = struct{}{}
}

// slugify lowercases s, keeps letters, digits, '-' and '_', and turns spaces into '-'.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}
