package linkverify

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
)

// BrokenLink is an internal link whose target does not exist.
type BrokenLink struct {
	Page   string // slash-separated page path relative to the site root
	Link   Link
	Target string // slash-separated resolved target relative to the site root
	Reason string
}

// VerifySite parses every generated HTML page under destRoot and reports
// internal links whose targets are missing. Relative links resolve against
// the page's directory, root-relative links against destRoot; a directory
// target needs an index.html.
func VerifySite(destRoot string) ([]BrokenLink, error) {
	root, err := filepath.Abs(destRoot)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "resolve site root").Build()
	}

	var broken []BrokenLink
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}

		links, err := ExtractLinks(path)
		if err != nil {
			return err
		}
		page, _ := filepath.Rel(root, path)
		for _, l := range links {
			if b, ok := check(root, path, l); !ok {
				b.Page = filepath.ToSlash(page)
				broken = append(broken, b)
			}
		}
		return nil
	})
	if err != nil {
		return broken, errors.WrapError(err, errors.CategoryFileSystem, "walk site").
			WithContext("path", root).Build()
	}
	return broken, nil
}

func check(root, page string, l Link) (BrokenLink, bool) {
	u, internal := isSiteInternal(l.URL)
	if !internal {
		return BrokenLink{}, true
	}

	var target string
	if strings.HasPrefix(u.Path, "/") {
		target = filepath.Join(root, filepath.FromSlash(u.Path))
	} else {
		target = filepath.Join(filepath.Dir(page), filepath.FromSlash(u.Path))
	}

	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return BrokenLink{Link: l, Target: filepath.ToSlash(u.Path), Reason: "outside site"}, false
	}

	info, err := os.Stat(target)
	switch {
	case err != nil:
		return BrokenLink{Link: l, Target: filepath.ToSlash(rel), Reason: "not found"}, false
	case info.IsDir():
		if _, err := os.Stat(filepath.Join(target, "index.html")); err != nil {
			return BrokenLink{Link: l, Target: filepath.ToSlash(rel), Reason: "directory without index.html"}, false
		}
	}
	return BrokenLink{}, true
}
