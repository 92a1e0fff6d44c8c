package staleness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/tutorialbuilder/internal/config"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	if _, err := os.Stat(path); err != nil {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestIsStale(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		srcTime *time.Time
		dstTime *time.Time
		want    bool
	}{
		{name: "source missing", dstTime: &base, want: false},
		{name: "both missing", want: false},
		{name: "destination missing", srcTime: &base, want: true},
		{name: "source newer", srcTime: ptr(base.Add(time.Second)), dstTime: &base, want: true},
		{name: "equal mtimes", srcTime: &base, dstTime: &base, want: false},
		{name: "destination newer", srcTime: &base, dstTime: ptr(base.Add(time.Second)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "src", "index.md")
			dst := filepath.Join(dir, "dst", "index.html")
			if tt.srcTime != nil {
				touch(t, src, *tt.srcTime)
			}
			if tt.dstTime != nil {
				touch(t, dst, *tt.dstTime)
			}

			got, err := New(config.MissingSourceSkip).IsStale(src, dst)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsStale_FatalPolicy(t *testing.T) {
	dir := t.TempDir()
	_, err := New(config.MissingSourceFatal).IsStale(filepath.Join(dir, "missing.md"), filepath.Join(dir, "out.html"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestNew_DefaultsToSkip(t *testing.T) {
	assert.Equal(t, config.MissingSourceSkip, New("").Policy())
}

func TestAnyStale(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.html")
	content := filepath.Join(dir, "index.md")
	tmpl := filepath.Join(dir, "template.html")
	meta := filepath.Join(dir, "meta.json")

	touch(t, dst, base)
	touch(t, content, base.Add(-time.Hour))
	touch(t, tmpl, base.Add(-time.Hour))

	o := New(config.MissingSourceSkip)

	stale, err := o.AnyStale(dst, content, tmpl, meta)
	require.NoError(t, err)
	assert.False(t, stale, "older sources and a missing optional meta file are not stale")

	touch(t, meta, base.Add(time.Minute))
	stale, err = o.AnyStale(dst, content, tmpl, meta)
	require.NoError(t, err)
	assert.True(t, stale)

	stale, err = o.AnyStale(dst)
	require.NoError(t, err)
	assert.False(t, stale)
}

func ptr[T any](v T) *T { return &v }
