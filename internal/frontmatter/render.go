package frontmatter

import (
	"errors"
	"maps"
	"strings"

	"gopkg.in/yaml.v3"
)

// Render serializes fm back into file text in the dialect and key
// convention it was read with. When assignedPostID is not empty it is stored
// under PostId (legacy keys) or id (Hugo-style keys), replacing any previous
// value. The body is appended unchanged.
//
// Without an id, parsed records reuse their header text as-is.
func Render(fm *FrontMatter, assignedPostID string) (string, error) {
	if fm == nil {
		return "", errors.New("frontmatter: nil record")
	}

	header, err := fm.renderHeader(assignedPostID)
	if err != nil {
		return "", err
	}

	open, closing := fm.Dialect.delimiters()
	newline := fm.newline()
	openEOL := fm.env.openEOL
	if openEOL == "" {
		openEOL = newline
	}
	closeEOL := fm.env.closeEOL
	if closeEOL == "" && fm.Body != "" {
		closeEOL = newline
	}

	var b strings.Builder
	b.Grow(len(fm.env.prefix) + len(header) + len(fm.Body) + 16)
	b.WriteString(fm.env.prefix)
	b.WriteString(open)
	b.WriteString(openEOL)
	b.WriteString(header)
	b.WriteString(fm.env.closeIndent)
	b.WriteString(closing)
	b.WriteString(closeEOL)
	b.WriteString(fm.Body)
	return b.String(), nil
}

func (fm *FrontMatter) renderHeader(id string) (string, error) {
	if id == "" && fm.hasSource {
		return fm.source, nil
	}
	key := fm.postIDKey()

	if fm.Dialect.IsYAML() {
		doc := fm.yamlDoc
		if doc == nil {
			mapping, err := nodeFromStringMap(fm.Raw)
			if err != nil {
				return "", malformed(fm.Dialect, "", err)
			}
			doc = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping}}
		}
		if id != "" {
			doc = withScalar(doc, key, id)
		}
		if len(doc.Content[0].Content) == 0 {
			return "", nil
		}
		out, err := encodeYAML(doc, fm.style)
		if err != nil {
			return "", malformed(fm.Dialect, key, err)
		}
		return string(out), nil
	}

	if fm.hasSource {
		out, err := spliceTOMLString(fm.source, key, id, fm.newline(), fm.Raw)
		if err == nil {
			return out, nil
		}
		// The layout defeated the line edit. Re-encoding drops comments
		// and formatting but keeps every value.
	}

	raw := fm.Raw
	if id != "" {
		raw = maps.Clone(fm.Raw)
		raw[key] = id
	}
	out, err := encodeTOML(raw, fm.style)
	if err != nil {
		return "", malformed(fm.Dialect, key, err)
	}
	return out, nil
}

func (fm *FrontMatter) newline() string {
	if fm.style.Newline == "" {
		return "\n"
	}
	return fm.style.Newline
}
