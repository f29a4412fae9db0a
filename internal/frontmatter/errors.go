package frontmatter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownFrontMatterFormat indicates that no supported header envelope was found.
	ErrUnknownFrontMatterFormat = errors.New("unknown front matter format")

	// ErrMalformedHeader indicates that an envelope was found but its header could not be decoded.
	ErrMalformedHeader = errors.New("malformed front matter header")
)

// ParseError describes why a document could not be parsed or rendered.
//
// Kind is one of the sentinel errors above; errors.Is matches both Kind and Cause.
type ParseError struct {
	Kind    error
	Dialect Dialect
	Key     string
	Excerpt string
	Cause   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Dialect != DialectUnknown {
		fmt.Fprintf(&b, " (%s)", e.Dialect)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, ": key %q", e.Key)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if e.Excerpt != "" {
		fmt.Fprintf(&b, ": near %q", e.Excerpt)
	}
	return b.String()
}

func (e *ParseError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func malformed(d Dialect, key string, cause error) *ParseError {
	return &ParseError{Kind: ErrMalformedHeader, Dialect: d, Key: key, Cause: cause}
}

const excerptRunes = 60

// excerpt returns the first few lines of content, shortened for diagnostics.
func excerpt(content string) string {
	trimmed := strings.TrimSpace(content)
	lines := strings.SplitN(trimmed, "\n", 4)
	if len(lines) > 3 {
		lines = lines[:3]
	}
	out := strings.Join(lines, "\n")
	runes := []rune(out)
	if len(runes) > excerptRunes {
		return string(runes[:excerptRunes]) + "..."
	}
	if len(out) < len(trimmed) {
		return out + "..."
	}
	return out
}
