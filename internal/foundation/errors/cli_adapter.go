package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
)

// Process exit codes by category. Anything unlisted exits with 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation:  2,
	CategoryFrontMatter: 2,
	CategoryConfig:      3,
	CategoryAuth:        5,
	CategoryNetwork:     6,
	CategoryRemote:      6,
	CategoryNotFound:    6,
	CategoryFileSystem:  7,
	CategoryJournal:     7,
	CategoryConversion:  8,
}

// CLIErrorAdapter turns errors into a message on stderr and an exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr, exit: os.Exit}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if classified, ok := AsClassified(err); ok {
		if code, ok := exitCodes[classified.category]; ok {
			return code
		}
	}
	return 1
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return classified.Error()
	}
	if classified.category == CategoryInternal {
		return "Internal error occurred (use -v for details)"
	}

	msg := "Error: " + classified.message
	if path, ok := classified.context.GetString("path"); ok && path != "" {
		msg = fmt.Sprintf("Error: %s: %s", path, classified.message)
	}
	if classified.cause != nil {
		msg += ": " + classified.cause.Error()
	}
	if classified.retry == RetryUserAction && classified.category == CategoryAuth {
		msg += " (run `easyblogger auth` to sign in again)"
	}
	return msg
}

// HandleError prints err and exits with its code. A nil error returns.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	classified, ok := AsClassified(err)
	return !ok || classified.severity == SeverityFatal
}

// logError logs the category and context of err with sorted attributes.
func (a *CLIErrorAdapter) logError(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}

	attrs := []slog.Attr{slog.String("category", string(classified.category))}
	if classified.retry != RetryNever {
		attrs = append(attrs, slog.String("retry", string(classified.retry)))
	}
	for _, k := range slices.Sorted(maps.Keys(classified.context)) {
		attrs = append(attrs, slog.Any(k, classified.context[k]))
	}
	a.logger.LogAttrs(context.Background(), slog.LevelError, classified.message, attrs...)
}
