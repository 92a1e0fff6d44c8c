package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantFields map[string]any
		wantBody   string
	}{
		{
			name:     "no frontmatter",
			in:       "# Title\n",
			wantBody: "# Title\n",
		},
		{
			name:       "yaml block",
			in:         "---\ntitle: Intro\ntags: [a, b]\n---\n# Title\n",
			wantFields: map[string]any{"title": "Intro", "tags": []any{"a", "b"}},
			wantBody:   "# Title\n",
		},
		{
			name:     "empty block is two thematic breaks",
			in:       "---\n---\nbody",
			wantBody: "---\n---\nbody",
		},
		{
			name:     "heading between thematic breaks is kept",
			in:       "---\n# Getting Started\n---\n\nSome text.\n",
			wantBody: "---\n# Getting Started\n---\n\nSome text.\n",
		},
		{
			name:     "comment-only block is kept",
			in:       "---\n# one\n\n# two\n---\nbody\n",
			wantBody: "---\n# one\n\n# two\n---\nbody\n",
		},
		{
			name:       "crlf newlines",
			in:         "---\r\ntitle: Win\r\n---\r\nbody\r\n",
			wantFields: map[string]any{"title": "Win"},
			wantBody:   "body\r\n",
		},
		{
			name:       "closing delimiter at eof",
			in:         "---\ntitle: Only\n---",
			wantFields: map[string]any{"title": "Only"},
			wantBody:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, body, err := SplitFrontmatter([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFields, fields)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestSplitFrontmatter_Unclosed(t *testing.T) {
	in := []byte("---\ntitle: x\n# Title\n")
	_, body, err := SplitFrontmatter(in)
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	assert.Equal(t, in, body)
}

func TestSplitFrontmatter_InvalidYAML(t *testing.T) {
	in := []byte("---\ntitle: [\n---\nbody\n")
	_, body, err := SplitFrontmatter(in)
	require.Error(t, err)
	assert.Equal(t, in, body)
}
