// Package staleness decides whether a generated file must be regenerated by
// comparing the modification times of a source and its destination.
package staleness

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"git.home.luguber.info/inful/tutorialbuilder/internal/config"
)

// ErrSourceMissing is returned under the fatal missing-source policy.
var ErrSourceMissing = errors.New("source file missing")

// Oracle compares source and destination modification times. It holds no state
// between calls; every answer is recomputed from the filesystem.
type Oracle struct {
	policy config.MissingSourcePolicy
}

// New returns an oracle applying the given missing-source policy.
func New(policy config.MissingSourcePolicy) *Oracle {
	if policy == "" {
		policy = config.MissingSourceSkip
	}
	return &Oracle{policy: policy}
}

// Policy returns the configured missing-source policy.
func (o *Oracle) Policy() config.MissingSourcePolicy { return o.policy }

// IsStale reports whether dst must be (re)generated from src.
//
// A missing src is not stale under the skip policy and an error wrapping
// ErrSourceMissing under the fatal policy. A missing dst is always stale.
// Otherwise dst is stale iff src was modified strictly after dst.
func (o *Oracle) IsStale(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if o.policy == config.MissingSourceFatal {
				return false, fmt.Errorf("%w: %s", ErrSourceMissing, src)
			}
			return false, nil
		}
		return false, fmt.Errorf("stat source %s: %w", src, err)
	}

	dstInfo, err := os.Stat(dst)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("stat destination %s: %w", dst, err)
	}

	return srcInfo.ModTime().After(dstInfo.ModTime()), nil
}

// AnyStale reports whether dst is stale with respect to any of srcs. Each source
// is checked individually; the first error aborts the check.
func (o *Oracle) AnyStale(dst string, srcs ...string) (bool, error) {
	for _, src := range srcs {
		stale, err := o.IsStale(src, dst)
		if err != nil {
			return false, err
		}
		if stale {
			return true, nil
		}
	}
	return false, nil
}
