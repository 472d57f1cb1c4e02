package extract

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Parse turns decoded page text into a document tree. The text is already
// UTF-8; no charset sniffing happens here.
func Parse(text string) (*html.Node, error) {
	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("could not parse html: %w", err)
	}
	return root, nil
}

// ByID returns the first element with the given id attribute, or nil.
func ByID(root *html.Node, id string) *html.Node {
	var found *html.Node

	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && htmlquery.SelectAttr(c, "id") == id {
				found = c
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}

	if root != nil {
		walk(root)
	}

	return found
}
