// Package render produces the generated HTML files of the site: one page per
// tutorial unit and the top-level index. Every output is gated by the staleness
// oracle, merged into a text/template, minified and written atomically.
package render
