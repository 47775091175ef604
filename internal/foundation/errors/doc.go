// Package errors provides the classified error type used across docprep.
//
// A ClassifiedError carries a category (config, filesystem, hook, ...), a
// severity and structured context. The CLI adapter turns the category into a
// process exit code and the severity into a log level.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "write output").
//		WithContext("path", outPath).
//		Build()
package errors
