// Package export turns Blogger posts into local source files.
package export

import (
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/easyblogger/internal/blogger"
	"git.home.luguber.info/inful/easyblogger/internal/frontmatter"
)

// Document renders post as a TOML fenced file with Hugo-style keys. content
// is the post body already converted to format.
func Document(post *blogger.Post, content, format string) (string, error) {
	raw := map[string]any{
		"title":  post.Title,
		"id":     post.ID,
		"format": format,
	}
	tags := post.Labels
	if tags == nil {
		tags = []string{}
	}
	raw["tags"] = tags
	if post.URL != "" {
		raw["aliases"] = []string{aliasFor(post.URL)}
	}
	if post.Published != nil {
		raw["publishdate"] = post.Published.UTC().Truncate(time.Second)
		raw["date"] = post.Published.UTC().Truncate(time.Second)
	}
	if post.Updated != nil {
		raw["lastmod"] = post.Updated.UTC().Truncate(time.Second)
	}
	raw["draft"] = post.Status == "DRAFT"

	fm, err := frontmatter.New(frontmatter.DialectTOMLFenced, raw, "\n"+content)
	if err != nil {
		return "", err
	}
	return frontmatter.Render(fm, "")
}

// aliasFor returns the path of a post URL, which Hugo uses as a redirect.
func aliasFor(postURL string) string {
	u, err := url.Parse(postURL)
	if err != nil || u.Path == "" {
		return postURL
	}
	return u.Path
}

var extensions = map[string]string{
	"markdown":        "md",
	"md":              "md",
	"gfm":             "md",
	"markdown_github": "md",
	"markdown_strict": "md",
	"commonmark":      "md",
	"asciidoc":        "adoc",
	"asciidoctor":     "adoc",
	"html":            "html",
}

// FileName returns the file a post is exported to: the base name of its URL
// with the extension for format, or a slug of the title for posts without
// a URL (drafts).
func FileName(post *blogger.Post, format string) string {
	ext, ok := extensions[strings.ToLower(format)]
	if !ok {
		ext = strings.ToLower(format)
	}

	base := ""
	if u, err := url.Parse(post.URL); err == nil && u.Path != "" {
		base = strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
	}
	if base == "" || base == "/" || base == "." {
		base = Slug(post.Title)
	}
	if base == "" {
		base = post.ID
	}
	return base + "." + ext
}

// Slug lowercases s, strips accents and joins words with dashes.
func Slug(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
