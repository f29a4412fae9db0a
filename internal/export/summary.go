package export

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var skipText = map[string]bool{"script": true, "style": true, "head": true}

// Summary returns the first n characters of the visible text of src,
// with whitespace collapsed. Longer texts are cut at a word boundary and end
// with an ellipsis.
func Summary(src string, n int) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && skipText[node.Data] {
			return
		}
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteByte(' ')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	text := strings.Join(strings.Fields(b.String()), " ")
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}

	cut := string([]rune(text)[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
