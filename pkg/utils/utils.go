package utils

import (
	"os"
	"time"
)

// FormatDate formats t as YYYY-MM-DD in the cafeterias' time zone.
func FormatDate(t time.Time) string {
	if t.Unix() <= 0 {
		return ""
	}

	return t.In(getTz()).Format("2006-01-02")
}

// Today is the current calendar day in the cafeterias' time zone.
func Today() time.Time {
	now := time.Now().In(getTz())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekdayToken returns the lowercase three letter token ("mon") of t.
func WeekdayToken(t time.Time) string {
	tokens := [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}
	return tokens[t.Weekday()]
}

func getTz() *time.Location {
	tz, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		os.Stderr.WriteString("Failed to load timezone: " + err.Error())
		os.Exit(1)
	}
	return tz
}

func GetOkJSON() []byte {
	return []byte(`{"ok":true}`)
}
