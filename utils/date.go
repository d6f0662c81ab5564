package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

func MustParseDate(dateStr string) time.Time {
	t, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

// DayBounds returns the [00:00, 24:00) window of the calendar day containing d.
func DayBounds(d time.Time) (time.Time, time.Time) {
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return start, start.AddDate(0, 0, 1)
}

// ISOWeekBounds returns the Monday and Sunday of the ISO week containing d.
func ISOWeekBounds(d time.Time) (time.Time, time.Time) {
	start, _ := DayBounds(d)
	weekday := int(start.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday := start.AddDate(0, 0, -(weekday - 1))
	return monday, monday.AddDate(0, 0, 6)
}

func ParseISOTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, fmt.Errorf("empty time string")
	}

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return &t, nil
	}

	t, err = time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return &t, nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		DateLayout,
	}
	for _, layout := range layouts {
		if tt, e := time.ParseInLocation(layout, s, time.UTC); e == nil {
			return &tt, nil
		}
	}

	return nil, fmt.Errorf("failed to parse time: %v", s)
}
