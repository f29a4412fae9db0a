package frontmatter

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

func decodeTOML(header string) (map[string]any, error) {
	raw := map[string]any{}
	if strings.TrimSpace(header) == "" {
		return raw, nil
	}
	if err := toml.Unmarshal([]byte(header), &raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return nil, err
	}
	return raw, nil
}

func encodeTOML(raw map[string]any, style Style) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	out, err := toml.Marshal(raw)
	if err != nil {
		return "", err
	}
	s := string(out)
	if nl := style.Newline; nl != "" && nl != "\n" {
		s = strings.ReplaceAll(s, "\n", nl)
	}
	return s, nil
}

var tomlTableHeader = regexp.MustCompile(`^[ \t]*\[\[?[ \t]*[A-Za-z0-9_\-."' ]+[ \t]*\]\]?[ \t]*(#.*)?\r?\n?$`)

// errSpliceMismatch reports a splice that did not yield exactly want plus key.
var errSpliceMismatch = errors.New("line edit changed other values")

// spliceTOMLString sets key to a basic string value in the top-level table
// of header, replacing the line that assigns key or inserting one before the
// first table header. All other lines are kept byte for byte.
//
// The scan is line based, so multi-line strings and arrays can mislead it.
// The result is decoded and must equal want with key set to value;
// otherwise the error wraps errSpliceMismatch.
func spliceTOMLString(header, key, value, newline string, want map[string]any) (string, error) {
	assignment := regexp.MustCompile(`^[ \t]*["']?` + regexp.QuoteMeta(key) + `["']?[ \t]*=`)
	line := key + " = " + strconv.Quote(value) + newline

	var lines []string
	if header != "" {
		lines = strings.SplitAfter(header, "\n")
		if lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
	}

	at := len(lines)
	replaced := false
	for i, l := range lines {
		if tomlTableHeader.MatchString(l) {
			at = i
			break
		}
		if assignment.MatchString(l) {
			lines[i] = line
			replaced = true
			break
		}
	}
	if !replaced {
		if at > 0 && !strings.HasSuffix(lines[at-1], "\n") {
			lines[at-1] += newline
		}
		lines = append(lines[:at], append([]string{line}, lines[at:]...)...)
	}

	out := strings.Join(lines, "")
	got, err := decodeTOML(out)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errSpliceMismatch, err)
	}
	expected := maps.Clone(want)
	if expected == nil {
		expected = map[string]any{}
	}
	expected[key] = value
	if !reflect.DeepEqual(got, expected) {
		return "", errSpliceMismatch
	}
	return out, nil
}
