package config

import (
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
)

// Validate checks invariants that defaults cannot repair.
func (c *Config) Validate() error {
	if err := checkRoots(filepath.Clean(c.Source), filepath.Clean(c.Destination)); err != nil {
		return err
	}
	for _, name := range []struct{ field, value string }{
		{"build.content_file", c.Build.ContentFile},
		{"build.meta_file", c.Build.MetaFile},
		{"build.template_file", c.Build.TemplateFile},
		{"build.stylesheet_file", c.Build.StylesheetFile},
		{"build.index_file", c.Build.IndexFile},
	} {
		if strings.ContainsAny(name.value, `/\`) {
			return ferrors.ValidationError("file name must not contain a path separator").
				WithContext("field", name.field).
				WithContext("value", name.value).Build()
		}
	}
	for _, d := range c.Build.SharedDirs {
		if strings.ContainsAny(d, `/\`) || d == "." || d == ".." {
			return ferrors.ValidationError("shared directory must be a plain directory name").
				WithContext("value", d).Build()
		}
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return ferrors.ValidationError("serve.port out of range").WithContext("port", c.Serve.Port).Build()
	}
	if c.Serve.RebuildInterval < 0 {
		return ferrors.ValidationError("serve.rebuild_interval must not be negative").Build()
	}
	return nil
}

// ValidateRoots repeats the source/destination nesting check on the resolved
// roots. A relative path and an absolute one only compare once anchored.
func (c *Config) ValidateRoots() error {
	return checkRoots(c.SourceRoot(), c.DestRoot())
}

func checkRoots(src, dst string) error {
	if src == dst {
		return ferrors.ValidationError("source and destination must differ").
			WithContext("source", src).Build()
	}
	rel, err := filepath.Rel(src, dst)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel) {
		return ferrors.ValidationError("destination must not be inside the source tree").
			WithContext("source", src).
			WithContext("destination", dst).Build()
	}
	return nil
}
