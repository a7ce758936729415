package domain

import "time"

// DateLayout is the ISO calendar date format used for task days.
const DateLayout = "2006-01-02"

// StartOfWeek returns the Monday of the week containing t, truncated to
// midnight in t's location. Sunday belongs to the week that started six days
// earlier.
func StartOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// WeekDates returns the seven ISO date strings of the week starting at the
// given Monday.
func WeekDates(monday time.Time) []string {
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = DateString(monday.AddDate(0, 0, i))
	}
	return dates
}

// DateString formats t as an ISO calendar date.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
