package domain

import "time"

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Windows groups the three calendar windows anchored on one reference day.
type Windows struct {
	Day   Window
	Week  Window
	Month Window
}

// Span returns the smallest window covering all three.
func (ws Windows) Span() Window {
	start := ws.Week.Start
	if ws.Month.Start.Before(start) {
		start = ws.Month.Start
	}
	return Window{Start: start, End: ws.Day.End}
}

// WindowsAt computes the day, ISO week (Monday first) and month-to-date
// windows containing asOf, in loc. Every window ends at the midnight that
// follows asOf's calendar day.
func WindowsAt(asOf time.Time, loc *time.Location) Windows {
	if loc == nil {
		loc = time.UTC
	}
	local := asOf.In(loc)
	y, m, d := local.Date()

	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	dayEnd := time.Date(y, m, d+1, 0, 0, 0, 0, loc)

	// time.Weekday has Sunday=0; shift so Monday=0.
	offset := (int(local.Weekday()) + 6) % 7
	weekStart := time.Date(y, m, d-offset, 0, 0, 0, 0, loc)

	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, loc)

	return Windows{
		Day:   Window{Start: dayStart, End: dayEnd},
		Week:  Window{Start: weekStart, End: dayEnd},
		Month: Window{Start: monthStart, End: dayEnd},
	}
}

// MonthToDate is the default listing window for shift queries.
func MonthToDate(asOf time.Time, loc *time.Location) Window {
	return WindowsAt(asOf, loc).Month
}
