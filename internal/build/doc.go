// Package build is the build orchestrator for tutorialbuilder.
//
// A Builder renders the index page, mirrors the shared asset directories and
// renders every tutorial unit of the source tree, sequentially and in
// directory-listing order. A failing unit is recorded in the Report and the
// build moves on; only failures to load the shared template or stylesheet (or
// to create the destination root) abort the run.
//
// Prune is the optional reconciliation pass that removes destination entries
// whose source no longer exists.
package build
