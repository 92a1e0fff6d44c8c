// Package metadata loads the per-unit key/value record merged into the page
// template: the unit's metadata file, YAML frontmatter from the content file,
// defaults for missing fields and derived display fields.
package metadata
