package crm

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// CombineDateTime merges a date ("2024-03-01") and a clock time ("09:30")
// into one timestamp in loc, with seconds and nanoseconds zeroed.
// ok is false when either input is missing or does not parse; callers treat
// that as a validation failure.
func CombineDateTime(date, clock string, loc *time.Location) (t time.Time, ok bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, false
	}

	// time.Parse rejects impossible calendar dates such as 2023-02-30.
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, false
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), true
}

// SplitDateTime is the inverse used to prefill edit forms.
func SplitDateTime(t time.Time, loc *time.Location) (date, clock string) {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dateLayout), t.Format("15:04")
}
