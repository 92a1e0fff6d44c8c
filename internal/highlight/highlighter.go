package highlight

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/logfields"
)

// Options configures a Highlighter.
type Options struct {
	// NoHighlight is the class token that opts a block out of highlighting.
	NoHighlight string
	// Fallback is the language used for identifiers with no registered grammar.
	Fallback string
	// Style names the chroma style used for the generated stylesheet.
	Style string
}

// Highlighter tokenizes code with registry grammars and emits class-based HTML.
type Highlighter struct {
	registry  *Registry
	formatter *chromahtml.Formatter
	style     *chroma.Style
	opts      Options
	logger    *slog.Logger
}

// New creates a highlighter. The fallback language must be registered.
func New(registry *Registry, opts Options) (*Highlighter, error) {
	if _, ok := registry.Lookup(opts.Fallback); !ok {
		return nil, ferrors.ConfigError("fallback highlight language is not registered").
			WithContext("language", opts.Fallback).Build()
	}
	return &Highlighter{
		registry: registry,
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
		style:  styles.Get(opts.Style),
		opts:   opts,
		logger: slog.Default(),
	}, nil
}

// WithLogger sets a custom logger.
func (h *Highlighter) WithLogger(logger *slog.Logger) *Highlighter {
	h.logger = logger
	return h
}

// CSS returns the stylesheet for the token classes, scoped to highlighted blocks.
func (h *Highlighter) CSS() (string, error) {
	var buf bytes.Buffer
	if err := h.formatter.WriteCSS(&buf, h.style); err != nil {
		return "", fmt.Errorf("write highlight css: %w", err)
	}
	return strings.ReplaceAll(buf.String(), ".chroma", `pre[class*="language-"]`), nil
}

// Highlight renders code with the grammar for lang. It reports the language
// actually used, which is the fallback when lang is not registered.
func (h *Highlighter) Highlight(code, lang string) (html string, used string, err error) {
	used = strings.ToLower(lang)
	lexer, ok := h.registry.Lookup(used)
	if !ok {
		used = h.opts.Fallback
		lexer, _ = h.registry.Lookup(used)
	}

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", used, fmt.Errorf("tokenise %s: %w", used, err)
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, it); err != nil {
		return "", used, fmt.Errorf("format %s: %w", used, err)
	}
	return buf.String(), used, nil
}

// codeBlockPattern matches goldmark's fenced code output. Blocks that do not
// have exactly this shape are left alone.
var codeBlockPattern = regexp.MustCompile(`(?s)<pre><code class="([^"]*)">(.*?)</code></pre>`)

var entityReplacer = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&amp;", "&")

// EnhanceCodeBlocks highlights every fenced code block in html. Unknown
// languages are highlighted with the fallback grammar and reported as
// warnings; the returned HTML is always usable. The wrapper classes keep the
// language exactly as the author declared it.
func (h *Highlighter) EnhanceCodeBlocks(html []byte) ([]byte, []error) {
	var warnings []error

	out := codeBlockPattern.ReplaceAllFunc(html, func(block []byte) []byte {
		m := codeBlockPattern.FindSubmatch(block)
		lang := languageFromClass(string(m[1]))
		if lang == "" || strings.EqualFold(lang, h.opts.NoHighlight) {
			return block
		}

		code := entityReplacer.Replace(string(m[2]))
		highlighted, used, err := h.Highlight(code, lang)
		if err != nil {
			warnings = append(warnings, ferrors.WrapError(err, ferrors.CategoryHighlight, "highlight failed, block left as is").
				Warning().WithContext("language", lang).Build())
			h.logger.Warn("Highlight failed", logfields.Language(lang), logfields.Error(err))
			return block
		}
		if used != strings.ToLower(lang) {
			warnings = append(warnings, ferrors.HighlightWarning("language not registered, using fallback").
				WithContext("language", lang).
				WithContext("fallback", used).Build())
			h.logger.Warn("Unregistered highlight language, using fallback",
				logfields.Language(lang), slog.String("fallback", used))
		}

		return []byte(`<pre class="language-` + lang + `"><code class="language-` + lang + `">` + highlighted + `</code></pre>`)
	})
	return out, warnings
}

// languageFromClass returns the first class token with any "language-" prefix removed.
func languageFromClass(class string) string {
	fields := strings.Fields(class)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimPrefix(fields[0], "language-")
}
