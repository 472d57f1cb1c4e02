package menu

import (
	"fmt"
	"time"

	"github.com/kotrzina/knue-meals/pkg/extract"
	"golang.org/x/net/html"
)

// PositionalResult is what the date addressed page yields.
type PositionalResult struct {
	Meals map[string][]string
	// Relaxed lists the slots that only matched a fallback strategy.
	Relaxed []string
}

// Extract reads every slot's cells from a parsed date addressed page. All
// cells matched for a slot contribute their lines in document order. A slot
// without cells ends up empty; that is not an error.
func (s *DateSource) Extract(root *html.Node) PositionalResult {
	result := PositionalResult{Meals: make(map[string][]string, len(s.Meals))}

	for _, meal := range s.Meals {
		cells, strategy := meal.Selector.Match(root)
		if strategy > 0 {
			result.Relaxed = append(result.Relaxed, meal.Name)
		}

		items := []string{}
		for _, cell := range cells {
			items = append(items, extract.Lines(cell)...)
		}
		result.Meals[meal.Name] = items
	}

	return result
}

// SectionResult is what one weekday block of the weekday addressed page yields.
type SectionResult struct {
	Meals         map[string][]string
	Date          *time.Time
	Heading       string
	TableFallback bool
}

// Extract resolves the block of the given weekday and reads its labeled rows.
// The error wraps extract.ErrSectionNotFound or extract.ErrTableNotFound.
func (s *WeekdaySource) Extract(root *html.Node, day string) (*SectionResult, error) {
	id, ok := s.Days[day]
	if !ok {
		return nil, fmt.Errorf("no block configured for %q", day)
	}

	scope := extract.ByID(root, id)
	if scope == nil {
		return nil, fmt.Errorf("%w: no element with id %q for %s", extract.ErrSectionNotFound, id, day)
	}

	section, err := extract.ResolveSection(scope, s.Section)
	if err != nil {
		return nil, err
	}

	heading := extract.HeadingText(section.Heading)
	result := &SectionResult{
		Meals:         section.Rows(s.Meals, extract.StripTimeRange),
		Heading:       heading,
		TableFallback: section.TableFallback,
	}
	if date, ok := extract.ParseHeadingDate(heading); ok {
		result.Date = &date
	}

	return result, nil
}
