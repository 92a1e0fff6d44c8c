package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Stage names used for durations and metrics.
const (
	StagePrepare = "prepare"
	StageIndex   = "index"
	StageAssets  = "assets"
	StageUnits   = "units"
	StagePrune   = "prune"
)

// Report captures what a build did.
type Report struct {
	SchemaVersion int
	BuildID       string
	Start         time.Time
	End           time.Time

	UnitsRendered int
	UnitsFresh    int
	UnitsSkipped  int // directories without a content file
	UnitsFailed   int
	FilesCopied   int
	FilesSkipped  int
	IndexRendered bool
	Pruned        int

	StageDurations map[string]time.Duration
	Warnings       []error // recovered conditions (metadata or highlight fallback)
	Errors         []error // failed steps; fatal ones also abort the build
	Outcome        Outcome
}

func newReport() *Report {
	return &Report{
		SchemaVersion:  1,
		BuildID:        uuid.NewString(),
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
	}
}

func (r *Report) finish(fatal error, canceled bool) {
	r.End = time.Now()
	switch {
	case canceled:
		r.Outcome = OutcomeCanceled
	case fatal != nil:
		r.Outcome = OutcomeFailed
	case len(r.Errors) > 0 || len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("rendered=%d fresh=%d skipped=%d failed=%d copied=%d index=%t pruned=%d warnings=%d errors=%d duration=%s outcome=%s",
		r.UnitsRendered, r.UnitsFresh, r.UnitsSkipped, r.UnitsFailed, r.FilesCopied, r.IndexRendered, r.Pruned,
		len(r.Warnings), len(r.Errors), r.Duration().Truncate(time.Millisecond), r.Outcome)
}

// reportJSON is the serialized form: errors become strings.
type reportJSON struct {
	SchemaVersion  int                      `json:"schema_version"`
	BuildID        string                   `json:"build_id"`
	Start          time.Time                `json:"start"`
	End            time.Time                `json:"end"`
	DurationMS     int64                    `json:"duration_ms"`
	UnitsRendered  int                      `json:"units_rendered"`
	UnitsFresh     int                      `json:"units_fresh"`
	UnitsSkipped   int                      `json:"units_skipped"`
	UnitsFailed    int                      `json:"units_failed"`
	FilesCopied    int                      `json:"files_copied"`
	FilesSkipped   int                      `json:"files_skipped"`
	IndexRendered  bool                     `json:"index_rendered"`
	Pruned         int                      `json:"pruned"`
	StageDurations map[string]time.Duration `json:"stage_durations"`
	Warnings       []string                 `json:"warnings"`
	Errors         []string                 `json:"errors"`
	Outcome        Outcome                  `json:"outcome"`
}

// MarshalJSON implements json.Marshaler.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		SchemaVersion:  r.SchemaVersion,
		BuildID:        r.BuildID,
		Start:          r.Start,
		End:            r.End,
		DurationMS:     r.Duration().Milliseconds(),
		UnitsRendered:  r.UnitsRendered,
		UnitsFresh:     r.UnitsFresh,
		UnitsSkipped:   r.UnitsSkipped,
		UnitsFailed:    r.UnitsFailed,
		FilesCopied:    r.FilesCopied,
		FilesSkipped:   r.FilesSkipped,
		IndexRendered:  r.IndexRendered,
		Pruned:         r.Pruned,
		StageDurations: r.StageDurations,
		Warnings:       errorStrings(r.Warnings),
		Errors:         errorStrings(r.Errors),
		Outcome:        r.Outcome,
	})
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

// Persist writes the report as indented JSON to path atomically.
func (r *Report) Persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("ensure report directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename report json: %w", err)
	}
	return nil
}
