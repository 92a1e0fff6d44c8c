package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// FileAssertions provides utilities for asserting file system state in tests
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

// AssertFileExists validates that a file exists
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		fa.t.Errorf("Expected file to exist: %s", fullPath)
	}
	return fa
}

// AssertNotExists validates that nothing exists at the path
func (fa *FileAssertions) AssertNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Stat(fullPath); err == nil {
		fa.t.Errorf("Expected path to not exist: %s", fullPath)
	}
	return fa
}

// AssertFileContains validates that a file contains expected content
func (fa *FileAssertions) AssertFileContains(relativePath, expectedContent string) *FileAssertions {
	fa.t.Helper()
	content := fa.Content(relativePath)
	if !strings.Contains(content, expectedContent) {
		fa.t.Errorf("Expected file %s to contain %q\nActual content:\n%s",
			relativePath, expectedContent, content)
	}
	return fa
}

// AssertFileNotContains validates that a file does not contain content
func (fa *FileAssertions) AssertFileNotContains(relativePath, content string) *FileAssertions {
	fa.t.Helper()
	actual := fa.Content(relativePath)
	if strings.Contains(actual, content) {
		fa.t.Errorf("Expected file %s not to contain %q\nActual content:\n%s",
			relativePath, content, actual)
	}
	return fa
}

// Content reads and returns the content of a file
func (fa *FileAssertions) Content(relativePath string) string {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		fa.t.Fatalf("Failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// Snapshot records the mtime of every regular file under the base directory,
// keyed by slash-separated relative path.
func (fa *FileAssertions) Snapshot() map[string]time.Time {
	fa.t.Helper()
	out := map[string]time.Time{}
	err := filepath.WalkDir(fa.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(fa.baseDir, path)
		out[filepath.ToSlash(rel)] = info.ModTime()
		return nil
	})
	if err != nil {
		fa.t.Fatalf("Failed to walk %s: %v", fa.baseDir, err)
	}
	return out
}

// Contents records the bytes of every regular file under the base directory.
func (fa *FileAssertions) Contents() map[string]string {
	fa.t.Helper()
	out := map[string]string{}
	for rel := range fa.Snapshot() {
		out[rel] = fa.Content(rel)
	}
	return out
}
