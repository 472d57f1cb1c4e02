package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrTableNotFound   = errors.New("table not found")
)

var (
	rowsExpr          = xpath.MustCompile(".//tr")
	defaultHeadingSet = []string{"h1", "h2", "h3", "h4", "h5", "h6"}
)

// SectionSpec describes how to find a labeled table below an anchor heading.
type SectionSpec struct {
	headingTags []string
	needles     []string
	tables      *Selector
}

// NewSectionSpec builds a spec for a heading containing every needle and the
// first following table carrying tableClass, falling back to the first
// following table of any class. Empty headingTags means h1..h6.
func NewSectionSpec(headingTags []string, tableClass string, needles ...string) (*SectionSpec, error) {
	if len(needles) == 0 {
		return nil, fmt.Errorf("section spec needs at least one heading needle")
	}
	if strings.ContainsAny(tableClass, `'" `) {
		return nil, fmt.Errorf("invalid table class %q", tableClass)
	}
	if len(headingTags) == 0 {
		headingTags = defaultHeadingSet
	}

	strategies := []string{}
	if tableClass != "" {
		strategies = append(strategies, fmt.Sprintf(
			"following::table[contains(concat(' ', normalize-space(@class), ' '), ' %s ')]", tableClass))
	}
	strategies = append(strategies, "following::table")

	tables, err := NewSelector(strategies...)
	if err != nil {
		return nil, fmt.Errorf("could not build table selector: %w", err)
	}

	return &SectionSpec{
		headingTags: append([]string(nil), headingTags...),
		needles:     append([]string(nil), needles...),
		tables:      tables,
	}, nil
}

// Section is an anchor heading and the table resolved for it.
type Section struct {
	Heading *html.Node
	Table   *html.Node
	// TableFallback is set when no table carried the marker class.
	TableFallback bool
}

// ResolveSection finds the first heading under scope matching spec, then the
// nearest table after it in document order. The table does not need to share
// an ancestor with the heading.
func ResolveSection(scope *html.Node, spec *SectionSpec) (*Section, error) {
	headings := FindByText(scope, spec.headingTags, spec.needles...)
	if len(headings) == 0 {
		return nil, fmt.Errorf("%w: no heading containing %s", ErrSectionNotFound, quoteAll(spec.needles))
	}
	heading := headings[0]

	tables, strategy := spec.tables.Match(heading)
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: nothing follows heading %q", ErrTableNotFound, HeadingText(heading))
	}

	return &Section{
		Heading:       heading,
		Table:         tables[0],
		TableFallback: strategy == len(spec.tables.exprs)-1 && len(spec.tables.exprs) > 1,
	}, nil
}

// HeadingText is the whitespace-collapsed text of the anchor heading.
func HeadingText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return NormalizeSpace(htmlquery.InnerText(n))
}

// Rows maps table rows to slot names. The first cell of a row is its label;
// rows whose label is not one of slots are skipped. The second cell goes
// through Lines and then post, when given. A later row with the same label
// replaces an earlier one.
func (s *Section) Rows(slots []string, post func([]string) []string) map[string][]string {
	known := make(map[string]bool, len(slots))
	for _, slot := range slots {
		known[slot] = true
	}

	out := map[string][]string{}
	for _, row := range htmlquery.QuerySelectorAll(s.Table, rowsExpr) {
		cells := rowCells(row)
		if len(cells) < 2 {
			continue
		}

		label := NormalizeSpace(htmlquery.InnerText(cells[0]))
		if !known[label] {
			continue
		}

		lines := Lines(cells[1])
		if post != nil {
			lines = post(lines)
		}
		out[label] = lines
	}

	return out
}

func rowCells(row *html.Node) []*html.Node {
	cells := []*html.Node{}
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "th" || c.Data == "td") {
			cells = append(cells, c)
		}
	}
	return cells
}

func quoteAll(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " and ")
}
