package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "meta.json"), `{"title":"Foo","subtitle":"Bar","author":{"name":"Ada","url":"https://ada.dev"},"order":3}`)

	rec, err := NewLoader("meta.json").Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Foo", rec.String(FieldTitle))
	assert.Equal(t, "Bar", rec.String(FieldSubtitle))
	assert.Equal(t, map[string]any{"name": "Ada", "url": "https://ada.dev"}, rec[FieldAuthor])
	assert.InDelta(t, 3.0, rec["order"], 0)
}

func TestLoad_YAMLSibling(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "meta.yaml"), "title: From YAML\nsubtitle: sub\n")

	l := NewLoader("meta.json")
	assert.Equal(t, filepath.Join(dir, "meta.yaml"), l.Path(dir))

	rec, err := l.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "From YAML", rec.String(FieldTitle))
}

func TestLoad_JSONWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "meta.json"), `{"title":"json"}`)
	writeFile(t, filepath.Join(dir, "meta.yml"), "title: yaml\n")

	rec, err := NewLoader("meta.json").Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "json", rec.String(FieldTitle))
}

func TestLoad_Fallbacks(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "missing", files: nil},
		{name: "malformed json", files: map[string]string{"meta.json": `{"title": `}},
		{name: "json array", files: map[string]string{"meta.json": `["a"]`}},
		{name: "json null", files: map[string]string{"meta.json": `null`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, body := range tt.files {
				writeFile(t, filepath.Join(dir, name), body)
			}

			rec, err := NewLoader("meta.json").Load(dir)
			require.Error(t, err)
			assert.Equal(t, ferrors.SeverityWarning, ferrors.GetSeverity(err))
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryMetadata))
			assert.Equal(t, DefaultTitle, rec.String(FieldTitle))
			assert.Equal(t, DefaultSubtitle, rec.String(FieldSubtitle))
		})
	}
}

func TestLoad_MissingPathIsConfiguredName(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "meta.json"), NewLoader("meta.json").Path(dir))
}

func TestRecordHelpers(t *testing.T) {
	rec := Record{FieldTitle: "T"}
	rec.SetDefaultAuthor("Team", "https://team.example")
	assert.Equal(t, map[string]any{"name": "Team", "url": "https://team.example"}, rec[FieldAuthor])

	rec[FieldAuthor] = "Someone"
	rec.SetDefaultAuthor("Team", "")
	assert.Equal(t, "Someone", rec[FieldAuthor])

	rec.SetLastEdited(time.Date(2023, time.July, 4, 10, 0, 0, 0, time.UTC), "January 2, 2006")
	assert.Equal(t, "July 4, 2023", rec.String(FieldLastEdited))

	rec.SetUnit("http-basics")
	assert.Equal(t, "http-basics", rec.String(FieldUnit))
	assert.Equal(t, "Http Basics", rec.String(FieldUnitName))

	rec.Merge(map[string]any{FieldTitle: "Override", "draft": true})
	assert.Equal(t, "Override", rec.String(FieldTitle))
	assert.Equal(t, true, rec["draft"])
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Go Web Servers", DisplayName("go_web-servers"))
	assert.Equal(t, "Css", DisplayName("css"))
}
