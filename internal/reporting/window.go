// Package reporting turns raw orders into the gap-free daily series and
// headline totals shown on the dashboard.
package reporting

import (
	"errors"
	"fmt"
	"time"
)

// DayKeyLayout is the bucket lookup key format. Display labels are separate.
const DayKeyLayout = "2006-01-02"

// DefaultLabelLayout mirrors the month/day/year short date the charts label days with.
const DefaultLabelLayout = "1/2/2006"

var ErrInvalidWindow = errors.New("reporting window start is after end")

// Window is an inclusive reporting range. Start is a calendar-day boundary;
// End is a full timestamp, normally "now" at request time.
type Window struct {
	Start    time.Time
	End      time.Time
	Location *time.Location
}

// NewWindow is the only constructor that checks Start <= End; the helpers
// below build their ranges through it.
func NewWindow(start, end time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	if start.After(end) {
		return Window{}, fmt.Errorf("%w: %s > %s", ErrInvalidWindow, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Window{Start: start.In(loc), End: end.In(loc), Location: loc}, nil
}

// TrailingMonths covers midnight of the same day `months` calendar months
// before now, through now itself.
func TrailingMonths(now time.Time, months int, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	if months < 0 {
		return Window{}, fmt.Errorf("%w: negative month count %d", ErrInvalidWindow, months)
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month()-time.Month(months), local.Day(), 0, 0, 0, 0, loc)
	return NewWindow(start, local, loc)
}

// SingleDay covers one whole calendar day in loc.
func SingleDay(day time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	start := StartOfDay(day, loc)
	end := time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
	return NewWindow(start, end, loc)
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days is the number of calendar days the window touches.
func (w Window) Days() int {
	loc := w.location()
	first := StartOfDay(w.Start, loc)
	last := StartOfDay(w.End, loc)
	days := 0
	for d := first; !d.After(last); d = nextDay(d, loc) {
		days++
	}
	return days
}

func (w Window) location() *time.Location {
	if w.Location == nil {
		return time.Local
	}
	return w.Location
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DayKey is the bucket key of t's calendar day in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// Stepping the calendar date rather than adding 24h keeps DST days from
// being skipped or repeated.
func nextDay(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc)
}
