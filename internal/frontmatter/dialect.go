package frontmatter

import (
	"regexp"
)

// Dialect identifies the envelope and header encoding of a content file.
type Dialect int

const (
	DialectUnknown Dialect = iota
	// DialectTOMLFenced is a TOML header between `+++` lines.
	DialectTOMLFenced
	// DialectYAMLHTMLComment is a YAML header inside `<!--` and `-->`.
	DialectYAMLHTMLComment
	// DialectYAMLSlashComment is a YAML header between `////` lines (AsciiDoc comment block).
	DialectYAMLSlashComment
)

func (d Dialect) String() string {
	switch d {
	case DialectTOMLFenced:
		return "toml"
	case DialectYAMLHTMLComment:
		return "yaml-html-comment"
	case DialectYAMLSlashComment:
		return "yaml-slash-comment"
	default:
		return "unknown"
	}
}

// IsYAML reports whether the header of this dialect is encoded as YAML.
func (d Dialect) IsYAML() bool {
	return d == DialectYAMLHTMLComment || d == DialectYAMLSlashComment
}

func (d Dialect) delimiters() (string, string) {
	switch d {
	case DialectTOMLFenced:
		return "+++", "+++"
	case DialectYAMLHTMLComment:
		return "<!--", "-->"
	case DialectYAMLSlashComment:
		return "////", "////"
	default:
		return "", ""
	}
}

// Style captures formatting details needed for stable rewriting.
//
// It focuses on newline shape; header formatting is preserved separately
// by keeping the source text or the decoded YAML node tree.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// envelope records where the header sat in the original text.
type envelope struct {
	prefix      string // whitespace before the opening delimiter
	openEOL     string
	closeIndent string
	closeEOL    string // empty when the file ended right after the closing delimiter
}

// detector recognizes one dialect. Detectors are tried in table order and
// the first match wins.
type detector struct {
	dialect Dialect
	re      *regexp.Regexp
}

// match groups: 1 prefix, 2 open EOL, 3 header, 4 close indent, 5 close EOL, 6 body.
func envelopePattern(d Dialect) *regexp.Regexp {
	open, closing := d.delimiters()
	return regexp.MustCompile(`\A(\s*?)` + regexp.QuoteMeta(open) + `[ \t]*(\r?\n)` +
		`((?s:.*?\n)??)` +
		`([ \t]*)` + regexp.QuoteMeta(closing) + `[ \t]*(\r?\n|\z)` +
		`((?s:.*))\z`)
}

var detectors = []detector{
	{dialect: DialectTOMLFenced, re: envelopePattern(DialectTOMLFenced)},
	{dialect: DialectYAMLHTMLComment, re: envelopePattern(DialectYAMLHTMLComment)},
	{dialect: DialectYAMLSlashComment, re: envelopePattern(DialectYAMLSlashComment)},
}

type section struct {
	dialect Dialect
	env     envelope
	header  string
	body    string
}

// split finds the header envelope of content.
func split(content string) (section, bool) {
	for _, d := range detectors {
		m := d.re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		return section{
			dialect: d.dialect,
			env: envelope{
				prefix:      m[1],
				openEOL:     m[2],
				closeIndent: m[4],
				closeEOL:    m[5],
			},
			header: m[3],
			body:   m[6],
		}, true
	}
	return section{}, false
}

func detectStyle(content string) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			newline = "\n"
			break
		}
	}

	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
