package extract

import (
	"regexp"
	"strconv"
	"time"
)

var (
	// [11:30~13:30], (7:30 ~ 8:30), 17:30~19:00
	reTimeRange = regexp.MustCompile(`^\s*[\[(]?\s*\d{1,2}:\d{2}\s*~\s*\d{1,2}:\d{2}\s*[\])]?\s*$`)
	// 2025년 12월 22일
	reHeadingDate = regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
)

// StripTimeRange drops the first line when it is nothing but a serving time
// range. A second time range right after it means the lines are not a single
// annotation plus items, so nothing is dropped; this keeps the result stable
// when applied again.
func StripTimeRange(lines []string) []string {
	if len(lines) == 0 || !reTimeRange.MatchString(lines[0]) {
		return lines
	}
	if len(lines) > 1 && reTimeRange.MatchString(lines[1]) {
		return lines
	}
	return lines[1:]
}

// IsTimeRange reports whether line is exactly a time range annotation.
func IsTimeRange(line string) bool {
	return reTimeRange.MatchString(line)
}

// ParseHeadingDate finds a "YYYY년 M월 D일" date in s. The second return value
// is false when there is no such date or it is not a real calendar day.
func ParseHeadingDate(s string) (time.Time, bool) {
	m := reHeadingDate.FindStringSubmatch(s)
	if len(m) != 4 {
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	return CalendarDate(year, month, day)
}

// CalendarDate returns the date at midnight UTC, or false when the triple
// does not name a real day (2025-02-30, month 13, ...).
func CalendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}

	return t, true
}
