// Package highlight adds syntax highlighting to fenced code blocks in rendered
// HTML using chroma.
package highlight

import (
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// DefaultLanguages maps the language identifiers used in tutorials to chroma lexer names.
var DefaultLanguages = map[string]string{
	"markup":     "html",
	"html":       "html",
	"clike":      "c",
	"css":        "css",
	"javascript": "javascript",
	"js":         "javascript",
	"http":       "http",
	"shell":      "bash",
	"bash":       "bash",
	"sh":         "bash",
	"json":       "json",
	"go":         "go",
	"dockerfile": "docker",
	"yaml":       "yaml",
	"yml":        "yaml",
	"sql":        "sql",
}

// Registry is a fixed mapping from language identifier to grammar.
type Registry struct {
	lexers map[string]chroma.Lexer
}

// NewRegistry resolves every entry of languages against chroma's lexer set.
// Entries chroma does not know are left out.
func NewRegistry(languages map[string]string) *Registry {
	r := &Registry{lexers: make(map[string]chroma.Lexer, len(languages))}
	for id, name := range languages {
		if l := lexers.Get(name); l != nil {
			r.lexers[strings.ToLower(id)] = chroma.Coalesce(l)
		}
	}
	return r
}

// Lookup returns the grammar registered for lang.
func (r *Registry) Lookup(lang string) (chroma.Lexer, bool) {
	l, ok := r.lexers[strings.ToLower(lang)]
	return l, ok
}

// Languages returns the registered identifiers in sorted order.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.lexers))
	for id := range r.lexers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
