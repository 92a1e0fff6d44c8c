package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/logfields"
)

// ErrNoMetadata is the warning cause when a unit has no metadata file at all.
var ErrNoMetadata = errors.New("metadata file not found")

// Loader reads unit metadata files.
type Loader struct {
	metaFile string
	logger   *slog.Logger
}

// NewLoader creates a loader for the configured metadata file name (e.g. meta.json).
// When the configured name has a .json extension, sibling .yaml and .yml files
// are accepted if the JSON file does not exist.
func NewLoader(metaFile string) *Loader {
	return &Loader{metaFile: metaFile, logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	l.logger = logger
	return l
}

func (l *Loader) candidates() []string {
	ext := filepath.Ext(l.metaFile)
	if !strings.EqualFold(ext, ".json") {
		return []string{l.metaFile}
	}
	stem := strings.TrimSuffix(l.metaFile, ext)
	return []string{l.metaFile, stem + ".yaml", stem + ".yml"}
}

// Path returns the metadata file the unit uses: the first candidate that
// exists, or the configured name when none does. The result is a valid
// staleness dependency either way.
func (l *Loader) Path(unitDir string) string {
	for _, name := range l.candidates() {
		p := filepath.Join(unitDir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(unitDir, l.metaFile)
}

// Load returns the unit's metadata record. A missing or unparsable file is
// recovered from: the default record is returned together with a warning-level
// classified error describing why. Load never returns a nil record.
func (l *Loader) Load(unitDir string) (Record, error) {
	path := l.Path(unitDir)

	rec, err := parseFile(path)
	if err == nil {
		return rec, nil
	}

	unit := filepath.Base(unitDir)
	msg := "metadata file unparsable, using defaults"
	if errors.Is(err, ErrNoMetadata) {
		msg = "metadata file missing, using defaults"
	}
	warn := ferrors.MetadataWarning(msg).
		WithCause(err).
		WithContext("unit", unit).
		WithContext("path", path).
		Build()
	l.logger.Warn("Using default metadata", logfields.Unit(unit), logfields.Path(path), logfields.Error(err))
	return DefaultRecord(), warn
}

func parseFile(path string) (Record, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is inside the configured source tree
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoMetadata
		}
		return nil, err
	}

	var rec Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &rec)
	default:
		err = json.Unmarshal(data, &rec)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if rec == nil {
		return nil, fmt.Errorf("decode %s: empty document", filepath.Base(path))
	}
	return rec, nil
}
