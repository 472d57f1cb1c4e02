package menu

import (
	"time"
)

// Schedule is the menu of one day at one cafeteria. Every configured slot is
// present in Meals, possibly with no items.
type Schedule struct {
	Source string
	Label  string
	Date   *time.Time // nil when the page did not say
	Slots  []string   // slot names in page order
	Meals  map[string][]string
	Note   string
}

func newSchedule(src Source, slots []string) *Schedule {
	meals := make(map[string][]string, len(slots))
	for _, slot := range slots {
		meals[slot] = []string{}
	}

	return &Schedule{
		Source: src.ID,
		Label:  src.Label,
		Slots:  append([]string(nil), slots...),
		Meals:  meals,
	}
}

// set stores lines for a known slot; unknown slot names are dropped.
func (s *Schedule) set(slot string, lines []string) {
	if _, ok := s.Meals[slot]; !ok {
		return
	}
	if lines == nil {
		lines = []string{}
	}
	s.Meals[slot] = lines
}

// Empty reports whether no slot has a single item.
func (s *Schedule) Empty() bool {
	for _, lines := range s.Meals {
		if len(lines) > 0 {
			return false
		}
	}
	return true
}

// DateString formats Date as YYYY-MM-DD, or returns nil.
func (s *Schedule) DateString() *string {
	if s.Date == nil {
		return nil
	}
	d := s.Date.Format(time.DateOnly)
	return &d
}
