package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// templateFuncs are available to the page template and the index source.
var templateFuncs = template.FuncMap{
	// default returns fallback when value is nil or an empty string.
	"default": func(fallback, value any) any {
		if value == nil {
			return fallback
		}
		if s, ok := value.(string); ok && s == "" {
			return fallback
		}
		return value
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// ParseTemplate compiles template text once for reuse across units.
func ParseTemplate(name, text string) (*template.Template, error) {
	tpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return tpl, nil
}

// Merge executes tpl with data.
func Merge(tpl *template.Template, data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", tpl.Name(), err)
	}
	return buf.Bytes(), nil
}
