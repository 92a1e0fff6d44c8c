// Package treecopy mirrors a directory subtree, copying only files whose
// destination is stale.
package treecopy

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/logfields"
	"git.home.luguber.info/inful/tutorialbuilder/internal/staleness"
)

// Stats counts the files a CopyTree call copied and skipped.
type Stats struct {
	Copied  int
	Skipped int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Copied += other.Copied
	s.Skipped += other.Skipped
}

// Copier copies trees file by file, gated by a staleness oracle.
type Copier struct {
	oracle *staleness.Oracle
	logger *slog.Logger
}

// New creates a copier using oracle for per-file gating.
func New(oracle *staleness.Oracle) *Copier {
	return &Copier{oracle: oracle, logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (c *Copier) WithLogger(logger *slog.Logger) *Copier {
	c.logger = logger
	return c
}

// CopyTree mirrors srcDir into dstDir. Directories are recreated with the same
// names, files are copied byte for byte when stale, and nothing under dstDir is
// ever deleted. Hidden entries are skipped. A symlink to a regular file is
// copied as that file; links to directories, dangling links and other special
// files are skipped with a debug log.
func (c *Copier) CopyTree(srcDir, dstDir string) (Stats, error) {
	var stats Stats

	if err := os.MkdirAll(dstDir, 0o750); err != nil {
		return stats, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create destination directory").
			WithContext("path", dstDir).Build()
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return stats, ferrors.WrapError(err, ferrors.CategoryFileSystem, "list source directory").
			WithContext("path", srcDir).Build()
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		src := filepath.Join(srcDir, name)
		dst := filepath.Join(dstDir, name)

		if entry.IsDir() {
			sub, err := c.CopyTree(src, dst)
			stats.Add(sub)
			if err != nil {
				return stats, err
			}
			continue
		}
		if !c.copyable(entry, src) {
			continue
		}

		stale, err := c.oracle.IsStale(src, dst)
		if err != nil {
			return stats, ferrors.WrapError(err, ferrors.CategoryFileSystem, "check staleness").
				WithContext("path", src).Build()
		}
		if !stale {
			stats.Skipped++
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return stats, ferrors.WrapError(err, ferrors.CategoryFileSystem, "copy file").
				WithContext("source", src).
				WithContext("dest", dst).Build()
		}
		stats.Copied++
		c.logger.Debug("Copied file", logfields.Source(src), logfields.Dest(dst))
	}

	return stats, nil
}

func (c *Copier) copyable(entry fs.DirEntry, src string) bool {
	mode := entry.Type()
	if mode.IsRegular() {
		return true
	}
	if mode&fs.ModeSymlink != 0 {
		info, err := os.Stat(src)
		if err == nil && info.Mode().IsRegular() {
			return true
		}
		c.logger.Debug("Skipping symlink that is not a regular file", logfields.Source(src))
		return false
	}
	c.logger.Debug("Skipping special file", logfields.Source(src))
	return false
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) // #nosec G304 -- paths come from walking the source tree
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) // #nosec G304 -- destination mirrors the source tree
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("stream %s: %w", src, err)
	}
	return nil
}
