package metadata

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Field names the page template can rely on.
const (
	FieldTitle        = "title"
	FieldSubtitle     = "subtitle"
	FieldAuthor       = "author"
	FieldLastEdited   = "lastEdited"
	FieldContent      = "content"
	FieldSharedCSS    = "sharedCSS"
	FieldHighlightCSS = "highlightCSS"
	FieldUnit         = "unit"
	FieldUnitName     = "unitName"
	FieldSiteTitle    = "siteTitle"
)

// Fallback values used when a unit has no usable metadata file.
const (
	DefaultTitle    = "Untitled"
	DefaultSubtitle = "Add a meta.json file to this tutorial to set its title and subtitle"
)

// Record is a parsed metadata mapping. Values are whatever the metadata file held.
type Record map[string]any

// DefaultRecord returns the record substituted for missing or unparsable metadata.
func DefaultRecord() Record {
	return Record{
		FieldTitle:    DefaultTitle,
		FieldSubtitle: DefaultSubtitle,
	}
}

// String returns the value of key when it is a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Merge copies every field of other over r.
func (r Record) Merge(other map[string]any) {
	for k, v := range other {
		r[k] = v
	}
}

// SetDefaultAuthor fills the author field when it is absent or empty.
func (r Record) SetDefaultAuthor(name, url string) {
	if v, ok := r[FieldAuthor]; ok && v != nil && v != "" {
		return
	}
	r[FieldAuthor] = map[string]any{"name": name, "url": url}
}

// SetLastEdited stores mtime as a display string using layout.
func (r Record) SetLastEdited(mtime time.Time, layout string) {
	r[FieldLastEdited] = mtime.Format(layout)
}

// SetUnit stores the unit directory name and its display form.
func (r Record) SetUnit(name string) {
	r[FieldUnit] = name
	r[FieldUnitName] = DisplayName(name)
}

var titleCaser = cases.Title(language.English)

// DisplayName turns a unit directory name such as "http-basics" into "Http Basics".
func DisplayName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	return titleCaser.String(strings.Join(words, " "))
}
