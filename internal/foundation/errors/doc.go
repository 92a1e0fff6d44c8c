// Package errors provides the classified error primitives used across tutorialbuilder.
//
// A ClassifiedError carries a category (what failed), a severity (how much it
// matters to the current run) and a free-form context map. Errors are built
// with the fluent ErrorBuilder:
//
//	err := errors.WrapError(ioErr, errors.CategoryFileSystem, "read shared template").
//		Fatal().
//		WithContext("path", templatePath).
//		Build()
//
// Recovered conditions (metadata fallback, highlight fallback) are reported
// with SeverityWarning so the build report can surface them without failing
// the run. The CLI adapter maps categories to process exit codes.
package errors
