package period

import (
	"fmt"
	"time"
)

// Named periods accepted by history and analytics endpoints
const (
	Today     = "today"
	Yesterday = "yesterday"
	Week      = "week"
	Month     = "month"
	Year      = "year"
	Custom    = "custom"
)

// Range is a half-open window [Start, End). A record timestamped exactly
// at End is excluded, which makes 23:59:59.999 of the last day included
// and 00:00:00.000 of the next day excluded.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Resolve returns the calendar window for a named period relative to now.
// Week runs Sunday to Sunday, month and year start on their first day.
func Resolve(name string, now time.Time) (Range, error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch name {
	case Today:
		return Range{Start: todayStart, End: todayStart.AddDate(0, 0, 1)}, nil
	case Yesterday:
		return Range{Start: todayStart.AddDate(0, 0, -1), End: todayStart}, nil
	case Week:
		weekStart := todayStart.AddDate(0, 0, -int(now.Weekday()))
		return Range{Start: weekStart, End: weekStart.AddDate(0, 0, 7)}, nil
	case Month:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{Start: monthStart, End: monthStart.AddDate(0, 1, 0)}, nil
	case Year:
		yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return Range{Start: yearStart, End: yearStart.AddDate(1, 0, 0)}, nil
	default:
		return Range{}, fmt.Errorf("unknown period %q", name)
	}
}

// ResolveCustom builds an inclusive date range. End is extended to the
// end of its day regardless of the time component passed in.
func ResolveCustom(start, end time.Time) Range {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location()).AddDate(0, 0, 1)
	return Range{Start: s, End: e}
}

// DayKey formats a timestamp as its day bucket label
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// MonthKey formats a timestamp as its month bucket label
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DaySequence returns the start of every calendar day from start up to
// and including the day containing end, so charts keep contiguous x-axes
// even for days with no activity.
func DaySequence(start, end time.Time) []time.Time {
	var days []time.Time
	d := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	for !d.After(last) {
		days = append(days, d)
		d = d.AddDate(0, 0, 1)
	}
	return days
}

// MonthSequence returns the first day of every calendar month between
// start and end inclusive
func MonthSequence(start, end time.Time) []time.Time {
	var months []time.Time
	m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	for !m.After(last) {
		months = append(months, m)
		m = m.AddDate(0, 1, 0)
	}
	return months
}
