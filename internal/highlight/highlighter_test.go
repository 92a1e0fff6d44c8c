package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
)

func newHighlighter(t *testing.T) *Highlighter {
	t.Helper()
	h, err := New(NewRegistry(DefaultLanguages), Options{NoHighlight: "nohighlight", Fallback: "markup", Style: "github"})
	require.NoError(t, err)
	return h
}

func TestRegistry_DefaultLanguagesResolve(t *testing.T) {
	r := NewRegistry(DefaultLanguages)
	for id := range DefaultLanguages {
		_, ok := r.Lookup(id)
		assert.True(t, ok, "language %q should resolve to a chroma lexer", id)
	}
	assert.Len(t, r.Languages(), len(DefaultLanguages))

	_, ok := r.Lookup("GO")
	assert.True(t, ok, "lookup is case-insensitive")
	_, ok = r.Lookup("brainfuck")
	assert.False(t, ok)
}

func TestNew_RejectsUnregisteredFallback(t *testing.T) {
	_, err := New(NewRegistry(map[string]string{"go": "go"}), Options{Fallback: "markup"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestEnhanceCodeBlocks_Highlights(t *testing.T) {
	h := newHighlighter(t)
	in := `<p>x</p><pre><code class="language-go">func main() {}
</code></pre>`

	out, warnings := h.EnhanceCodeBlocks([]byte(in))
	require.Empty(t, warnings)

	s := string(out)
	assert.Contains(t, s, `<pre class="language-go"><code class="language-go">`)
	assert.Contains(t, s, `<span class="kd">func</span>`)
	assert.True(t, strings.HasPrefix(s, "<p>x</p>"))
}

func TestEnhanceCodeBlocks_EntityRoundTrip(t *testing.T) {
	h := newHighlighter(t)
	in := `<pre><code class="language-go">if a &lt; b &amp;&amp; c &gt; d { s := &quot;&amp;lt;&quot; }
</code></pre>`

	out, warnings := h.EnhanceCodeBlocks([]byte(in))
	require.Empty(t, warnings)

	s := string(out)
	assert.NotContains(t, s, "&amp;amp;", "no double escaping")
	assert.Contains(t, s, "&lt;")
	assert.Contains(t, s, "&gt;")
	assert.Contains(t, s, "&amp;&amp;")
	assert.Contains(t, s, "&amp;lt;", "an escaped entity in the source code survives as literal text")
}

func TestEnhanceCodeBlocks_Fallback(t *testing.T) {
	h := newHighlighter(t)
	in := `<pre><code class="language-cobol">DISPLAY 'HI'.
</code></pre>`

	out, warnings := h.EnhanceCodeBlocks([]byte(in))
	require.Len(t, warnings, 1)
	assert.True(t, ferrors.HasCategory(warnings[0], ferrors.CategoryHighlight))
	assert.Equal(t, ferrors.SeverityWarning, ferrors.GetSeverity(warnings[0]))

	s := string(out)
	assert.Contains(t, s, `<pre class="language-cobol"><code class="language-cobol">`)
	assert.NotContains(t, s, "language-markup")
	assert.Contains(t, s, "DISPLAY")
}

func TestEnhanceCodeBlocks_KeepsDeclaredLanguage(t *testing.T) {
	h := newHighlighter(t)
	tests := []struct {
		class   string
		want    string
		warning bool
	}{
		{class: "language-rust", want: "language-rust", warning: true},
		{class: "language-Go", want: "language-Go"},
		{class: "JS", want: "language-JS"},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			in := `<pre><code class="` + tt.class + `">fn main() {}</code></pre>`
			out, warnings := h.EnhanceCodeBlocks([]byte(in))
			assert.Equal(t, tt.warning, len(warnings) == 1)
			assert.Contains(t, string(out), `<pre class="`+tt.want+`"><code class="`+tt.want+`">`)
		})
	}
}

func TestEnhanceCodeBlocks_Untouched(t *testing.T) {
	h := newHighlighter(t)
	tests := []string{
		`<pre><code class="nohighlight">raw &lt;b&gt;</code></pre>`,
		`<pre><code class="language-nohighlight">raw</code></pre>`,
		`<pre><code class="">empty</code></pre>`,
		`<pre><code>no class</code></pre>`,
		`<pre class="x"><code class="language-go">other shape</code></pre>`,
	}
	for _, in := range tests {
		out, warnings := h.EnhanceCodeBlocks([]byte(in))
		assert.Empty(t, warnings)
		assert.Equal(t, in, string(out))
	}
}

func TestEnhanceCodeBlocks_MultipleBlocks(t *testing.T) {
	h := newHighlighter(t)
	in := `<pre><code class="language-sh">echo hi
</code></pre><p>and</p><pre><code class="language-yml">a: 1
</code></pre>`

	out, warnings := h.EnhanceCodeBlocks([]byte(in))
	require.Empty(t, warnings)
	s := string(out)
	assert.Contains(t, s, `<pre class="language-sh">`)
	assert.Contains(t, s, `<pre class="language-yml">`)
	assert.Contains(t, s, "<p>and</p>")
}

func TestCSS_ScopedToCodeBlocks(t *testing.T) {
	css, err := newHighlighter(t).CSS()
	require.NoError(t, err)
	assert.NotContains(t, css, ".chroma")
	assert.Contains(t, css, `pre[class*="language-"] .k`)
}

func TestLanguageFromClass(t *testing.T) {
	assert.Equal(t, "go", languageFromClass("language-go"))
	assert.Equal(t, "js", languageFromClass("js extra"))
	assert.Equal(t, "", languageFromClass("  "))
}
