package extract

import (
	"strings"

	"golang.org/x/net/html"
)

const lineBreak = "\n"

// Lines returns the visible lines of n with <br> elements as separators.
//
// Only direct children of n are inspected: text nodes directly inside n
// (leading text and the tail of every child) are kept verbatim, <br> starts a
// new line and any other element contributes its own leading text only.
// Text nested two levels down is not collected.
func Lines(n *html.Node) []string {
	if n == nil {
		return []string{}
	}

	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			if strings.EqualFold(c.Data, "br") {
				b.WriteString(lineBreak)
			}
			b.WriteString(leadingText(c))
		}
	}

	text := strings.ReplaceAll(b.String(), "\u00a0", " ")

	lines := []string{}
	for _, line := range strings.Split(text, lineBreak) {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

// leadingText is the text of n before its first non-text child.
func leadingText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil && c.Type == html.TextNode; c = c.NextSibling {
		b.WriteString(c.Data)
	}
	return b.String()
}

// NormalizeSpace collapses runs of whitespace (NBSP included) to a single
// space and trims the result.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
