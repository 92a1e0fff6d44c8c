// Package testutil builds tutorial source trees on disk and asserts on the
// generated destination tree.
package testutil
