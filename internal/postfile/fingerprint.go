package postfile

import (
	"errors"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/easyblogger/internal/frontmatter"
)

// Fingerprint computes the canonical content fingerprint of a parsed post.
//
// Only fields that end up in the remote post are hashed, serialized as sorted
// YAML with LF newlines. The post id is excluded, so a file hashes the same
// before and after its id is written back.
func Fingerprint(fm *frontmatter.FrontMatter) (string, error) {
	if fm == nil {
		return "", errors.New("front matter is nil")
	}

	fields := map[string]any{
		"title":   fm.Title,
		"labels":  fm.Labels,
		"format":  fm.Format,
		"publish": fm.Publish,
		"filters": fm.Filters,
	}
	if fm.PublishDate != nil {
		fields["publishdate"] = fm.PublishDate.UTC().Format(time.RFC3339)
	}

	serialized, err := frontmatter.SerializeYAML(fields, frontmatter.Style{Newline: "\n"})
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(trimSingleTrailingNewline(string(serialized)), fm.Body), nil
}

func trimSingleTrailingNewline(s string) string {
	if before, ok := strings.CutSuffix(s, "\r\n"); ok {
		return before
	}
	if before, ok := strings.CutSuffix(s, "\n"); ok {
		return before
	}
	return s
}
