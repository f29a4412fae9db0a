// Package errors provides classified error primitives used across easyblogger.
//
// A ClassifiedError carries a category (config, frontmatter, remote, ...), a
// severity, a retry hint and structured context. Errors are built fluently:
//
//	err := errors.WrapError(cause, errors.CategoryFrontMatter, "cannot parse post header").
//		WithContext("path", path).
//		Build()
//
// CLIErrorAdapter turns classified errors into user messages and exit codes.
package errors
