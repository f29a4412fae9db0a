package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("invalid input").Build(), expected: 2},
		{name: "front matter", err: FrontMatterError("bad header").Build(), expected: 2},
		{name: "config", err: ConfigError("bad config").Build(), expected: 3},
		{name: "auth", err: AuthError("unauthorized").Build(), expected: 5},
		{name: "remote", err: RemoteError("500").Build(), expected: 6},
		{name: "not found", err: NewError(CategoryNotFound, "post not found").Build(), expected: 6},
		{name: "filesystem", err: FileSystemError("disk full").Build(), expected: 7},
		{name: "journal", err: JournalError("locked").Build(), expected: 7},
		{name: "conversion", err: ConversionError("pandoc missing").Build(), expected: 8},
		{name: "internal", err: InternalError("bug").Build(), expected: 1},
		{name: "wrapped classified error", err: fmt.Errorf("publish: %w", AuthError("expired").Build()), expected: 5},
		{name: "unclassified error", err: errors.New("unknown error"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "internal error is hidden",
			err:      InternalError("internal issue").Build(),
			contains: "Internal error occurred (use -v for details)",
		},
		{
			name: "path and cause are shown",
			err: WrapError(errors.New("unknown front matter format"), CategoryFrontMatter, "cannot parse post header").
				WithContext("path", "post.md").
				Build(),
			contains: "Error: post.md: cannot parse post header: unknown front matter format",
		},
		{
			name:     "auth errors suggest signing in",
			err:      AuthError("token expired").Build(),
			contains: "easyblogger auth",
		},
		{
			name:     "unclassified error",
			err:      errors.New("unknown error"),
			contains: "Error: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, adapter.FormatError(tt.err), tt.contains)
		})
	}
	assert.Empty(t, adapter.FormatError(nil))
}

func TestCLIErrorAdapter_VerboseShowsFullError(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, slog.Default())
	err := InternalError("boom").Build()
	assert.Equal(t, err.Error(), adapter.FormatError(err))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, stderr bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.stderr = &stderr
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(nil)
	assert.Equal(t, -1, code)

	adapter.HandleError(FrontMatterError("bad header").WithContext("path", "a.md").Build())
	assert.Equal(t, 2, code)
	assert.Equal(t, "Error: a.md: bad header\n", stderr.String())
	assert.Empty(t, logs.String(), "non-fatal errors are not logged unless verbose")

	stderr.Reset()
	adapter.HandleError(ConfigError("no blog configured").WithContext("path", "cfg.yaml").Build())
	assert.Equal(t, 3, code)
	assert.Contains(t, logs.String(), "category=config")
	assert.Contains(t, logs.String(), "path=cfg.yaml")
	assert.Contains(t, logs.String(), "retry=user")
}
