package extract

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Selector is an ordered list of XPath strategies, most specific first.
// It is immutable once built and safe for concurrent use.
type Selector struct {
	raw   []string
	exprs []*xpath.Expr
}

// NewSelector compiles every strategy up front so a broken expression fails
// at start-up instead of on a request.
func NewSelector(strategies ...string) (*Selector, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("selector needs at least one strategy")
	}

	s := &Selector{
		raw:   make([]string, len(strategies)),
		exprs: make([]*xpath.Expr, len(strategies)),
	}
	for i, raw := range strategies {
		expr, err := xpath.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("could not compile xpath %q: %w", raw, err)
		}
		s.raw[i] = raw
		s.exprs[i] = expr
	}

	return s, nil
}

// MustSelector is like NewSelector but panics on an invalid expression.
func MustSelector(strategies ...string) *Selector {
	s, err := NewSelector(strategies...)
	if err != nil {
		panic(err)
	}
	return s
}

// Find returns the nodes matched by the first strategy that matches anything.
// No match at all is an empty slice, not an error.
func (s *Selector) Find(root *html.Node) []*html.Node {
	nodes, _ := s.Match(root)
	return nodes
}

// Match is Find that also reports the index of the strategy that matched,
// or -1 when none did.
func (s *Selector) Match(root *html.Node) ([]*html.Node, int) {
	if root == nil {
		return []*html.Node{}, -1
	}

	for i, expr := range s.exprs {
		nodes := htmlquery.QuerySelectorAll(root, expr)
		if len(nodes) > 0 {
			return nodes, i
		}
	}

	return []*html.Node{}, -1
}

// Strategies returns a copy of the raw expressions in priority order.
func (s *Selector) Strategies() []string {
	out := make([]string, len(s.raw))
	copy(out, s.raw)
	return out
}

func (s *Selector) String() string {
	return strings.Join(s.raw, " | ")
}

// FindByText returns the elements under root, in document order, whose tag is
// one of tags and whose whitespace-collapsed text contains every needle.
// An empty tags list accepts any element.
func FindByText(root *html.Node, tags []string, needles ...string) []*html.Node {
	found := []*html.Node{}
	if root == nil {
		return found
	}

	accept := make(map[string]bool, len(tags))
	for _, tag := range tags {
		accept[strings.ToLower(tag)] = true
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if len(accept) == 0 || accept[c.Data] {
				if containsAll(NormalizeSpace(htmlquery.InnerText(c)), needles) {
					found = append(found, c)
				}
			}
			walk(c)
		}
	}
	walk(root)

	return found
}

func containsAll(s string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(s, needle) {
			return false
		}
	}
	return true
}
