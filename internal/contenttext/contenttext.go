// Package contenttext extracts plain text from the HTML bodies the Mastodon
// API returns for status content.
package contenttext

import (
	"strings"

	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"p":   true,
	"div": true,
	"br":  true,
	"h1":  true,
	"h2":  true,
	"h3":  true,
}

// Text strips markup from content, preserving text order and inserting a
// newline after each closing block-level tag so separate paragraphs do not run
// together. Unparseable input degrades to whatever text was collected.
func Text(content string) string {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[strings.ToLower(n.Data)] {
			b.WriteByte('\n')
		}
	}
	walk(root)
	return b.String()
}
