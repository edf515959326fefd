package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	eventLayout = "2006-01-02T15:04:05"
)

// TimeWindow bounds one analysis run. Both bounds are calendar dates.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// ParseWindow parses YYYY-MM-DD bounds. Start must not be after End.
func ParseWindow(start, end string) (TimeWindow, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("parsing start date %q: %w", start, err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("parsing end date %q: %w", end, err)
	}
	if s.After(e) {
		return TimeWindow{}, fmt.Errorf("start date %s is after end date %s", start, end)
	}
	return TimeWindow{Start: s, End: e}, nil
}

// Contains reports whether d lies strictly inside the window.
// Events dated exactly on Start or End are excluded.
func (w TimeWindow) Contains(d time.Time) bool {
	day := DateOnly(d)
	return day.After(DateOnly(w.Start)) && day.Before(DateOnly(w.End))
}

// DateOnly drops the time-of-day and timezone components.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EventDate extracts the calendar date from a directory timestamp such
// as "2023-04-01T12:34:56.789Z". Fractional seconds and the trailing Z
// are discarded before parsing.
func EventDate(ts string) (time.Time, error) {
	s, _, _ := strings.Cut(ts, ".")
	s, _, _ = strings.Cut(s, "Z")
	t, err := time.Parse(eventLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing event time %q: %w", ts, err)
	}
	return DateOnly(t), nil
}
