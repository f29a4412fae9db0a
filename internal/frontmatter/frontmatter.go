// Package frontmatter parses and rewrites the metadata header of post
// content files.
//
// Three envelopes are recognized, tried in this order:
//
//	+++            <!--            ////
//	toml           yaml            yaml
//	+++            -->             ////
//
// Headers use either the legacy capitalized keys (PostId, Title, Labels,
// Format, Published, PublishDate) or Hugo-style keys (id, title, tags,
// format, draft, publishdate). YAML headers always use the legacy mapping.
package frontmatter

import (
	"maps"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultLabel is used when a header names no labels.
const DefaultLabel = "untagged"

// FrontMatter is the normalized, read-only result of parsing a content file.
type FrontMatter struct {
	PostID      string
	Title       string
	Labels      []string
	Format      string
	Publish     bool
	PublishDate *time.Time
	Filters     []string

	Dialect    Dialect
	LegacyKeys bool

	// Raw holds every decoded header key. YAML scalars keep their literal text.
	Raw  map[string]any
	Body string

	style     Style
	env       envelope
	source    string
	hasSource bool
	yamlDoc   *yaml.Node
}

type keySet struct {
	postID, title, format, publish, labels string
	invertPublish                          bool
	defaultFormat                          string
}

var (
	legacyKeySet = keySet{
		postID: "PostId", title: "Title", format: "Format", publish: "Published", labels: "Labels",
		defaultFormat: "markdown",
	}
	hugoKeySet = keySet{
		postID: "id", title: "title", format: "format", publish: "draft", labels: "tags",
		invertPublish: true,
		defaultFormat: "asciidoc",
	}
)

const (
	filtersKey     = "filters"
	publishDateKey = "publishdate"
)

// Parse parses content into a FrontMatter record.
//
// It returns a *ParseError wrapping ErrUnknownFrontMatterFormat when no
// envelope matches, or ErrMalformedHeader when the header cannot be decoded.
func Parse(content string) (*FrontMatter, error) {
	sec, ok := split(content)
	if !ok {
		return nil, &ParseError{Kind: ErrUnknownFrontMatterFormat, Excerpt: excerpt(content)}
	}

	fm := &FrontMatter{
		Dialect:   sec.dialect,
		Body:      sec.body,
		style:     detectStyle(content),
		env:       sec.env,
		source:    sec.header,
		hasSource: true,
	}

	if sec.dialect.IsYAML() {
		doc, err := decodeYAML(sec.header)
		if err != nil {
			perr := malformed(sec.dialect, "", err)
			perr.Excerpt = excerpt(sec.header)
			return nil, perr
		}
		v, err := nodeValue(doc)
		if err != nil {
			perr := malformed(sec.dialect, "", err)
			perr.Excerpt = excerpt(sec.header)
			return nil, perr
		}
		fm.yamlDoc = doc
		fm.Raw, _ = v.(map[string]any)
	} else {
		raw, err := decodeTOML(sec.header)
		if err != nil {
			perr := malformed(sec.dialect, "", err)
			perr.Excerpt = excerpt(sec.header)
			return nil, perr
		}
		fm.Raw = raw
	}
	if fm.Raw == nil {
		fm.Raw = map[string]any{}
	}

	if err := fm.resolveKeys(); err != nil {
		return nil, err
	}
	return fm, nil
}

// New builds a record from header fields that did not come from a file.
// Render encodes such records from Raw.
func New(dialect Dialect, raw map[string]any, body string) (*FrontMatter, error) {
	if dialect == DialectUnknown {
		return nil, &ParseError{Kind: ErrUnknownFrontMatterFormat}
	}
	fm := &FrontMatter{
		Dialect: dialect,
		Raw:     maps.Clone(raw),
		Body:    body,
		style:   Style{Newline: "\n", HasTrailingNewline: true},
		env:     envelope{openEOL: "\n", closeEOL: "\n"},
	}
	if fm.Raw == nil {
		fm.Raw = map[string]any{}
	}
	if err := fm.resolveKeys(); err != nil {
		return nil, err
	}
	return fm, nil
}

func (fm *FrontMatter) keys() keySet {
	if fm.LegacyKeys {
		return legacyKeySet
	}
	return hugoKeySet
}

func usesLegacyKeys(raw map[string]any) bool {
	for _, k := range []string{"PostId", "Title", "Format", "Published", "Labels"} {
		if _, ok := raw[k]; ok {
			return true
		}
	}
	return false
}

func (fm *FrontMatter) resolveKeys() error {
	fm.LegacyKeys = fm.Dialect.IsYAML() || usesLegacyKeys(fm.Raw)
	keys := fm.keys()

	var err error
	if fm.PostID, err = fm.stringField(keys.postID); err != nil {
		return err
	}
	if fm.Title, err = fm.stringField(keys.title); err != nil {
		return err
	}
	if fm.Format, err = fm.stringField(keys.format); err != nil {
		return err
	}
	if fm.Format == "" {
		fm.Format = keys.defaultFormat
	}

	if key, v, ok := lookup(fm.Raw, keys.publish); ok {
		b, present, berr := boolValue(v)
		if berr != nil {
			return malformed(fm.Dialect, key, berr)
		}
		if present {
			fm.Publish = b != keys.invertPublish
		}
	}

	if fm.Labels, err = fm.listField(keys.labels); err != nil {
		return err
	}
	if len(fm.Labels) == 0 {
		fm.Labels = []string{DefaultLabel}
	}
	if fm.Filters, err = fm.listField(filtersKey); err != nil {
		return err
	}
	if fm.Filters == nil {
		fm.Filters = []string{}
	}

	if key, v, ok := lookup(fm.Raw, publishDateKey); ok {
		t, terr := timeValue(v)
		if terr != nil {
			return malformed(fm.Dialect, key, terr)
		}
		fm.PublishDate = t
	}
	return nil
}

func (fm *FrontMatter) stringField(name string) (string, error) {
	key, v, ok := lookup(fm.Raw, name)
	if !ok {
		return "", nil
	}
	s, err := stringValue(v)
	if err != nil {
		return "", malformed(fm.Dialect, key, err)
	}
	return s, nil
}

func (fm *FrontMatter) listField(name string) ([]string, error) {
	key, v, ok := lookup(fm.Raw, name)
	if !ok {
		return nil, nil
	}
	items, err := listValue(v)
	if err != nil {
		return nil, malformed(fm.Dialect, key, err)
	}
	return items, nil
}

// postIDKey is the key Render writes the id under: an existing spelling is
// reused, otherwise the canonical key of the record's convention.
func (fm *FrontMatter) postIDKey() string {
	name := fm.keys().postID
	if key, _, ok := lookup(fm.Raw, name); ok {
		return key
	}
	return name
}
