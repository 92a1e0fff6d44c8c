package build

import (
	"os"
	"slices"
	"strings"
)

// ListUnitDirs returns the names of the immediate subdirectories of sourceRoot
// that may be tutorial units, in directory-listing order. Hidden directories
// and the reserved shared-asset names are excluded. Whether a candidate is a
// unit is decided later by the presence of its content file.
func ListUnitDirs(sourceRoot string, reserved []string) ([]string, error) {
	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || slices.Contains(reserved, name) {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}
