package errors

// ErrorCategory groups errors by where they came from. The CLI maps each
// category to an exit code.
type ErrorCategory string

const (
	// CategoryConfig represents user-facing configuration and input errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryFrontMatter covers content file headers that cannot be parsed or rewritten.
	CategoryFrontMatter ErrorCategory = "frontmatter"
	CategoryConversion  ErrorCategory = "conversion"

	// CategoryNetwork represents transport failures; CategoryRemote is an error answer from the blog service.
	CategoryNetwork ErrorCategory = "network"
	CategoryRemote  ErrorCategory = "remote"

	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryJournal    ErrorCategory = "journal"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal ErrorSeverity = "fatal" // nothing can proceed, e.g. unusable configuration
	SeverityError ErrorSeverity = "error" // the current post or command failed
)

// RetryStrategy tells the user whether trying again can help.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryRateLimit  RetryStrategy = "rate_limit" // wait for the quota window
	RetryUserAction RetryStrategy = "user"       // fix the input or sign in again
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}
