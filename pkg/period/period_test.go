package period

import (
	"testing"
	"time"
)

func TestResolveTodayBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 30, 0, 0, time.Local)
	r, err := Resolve(Today, now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	lastMillisecond := time.Date(2026, 3, 14, 23, 59, 59, 999000000, time.Local)
	if !r.Contains(lastMillisecond) {
		t.Fatalf("expected 23:59:59.999 of today to be included")
	}

	nextMidnight := time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)
	if r.Contains(nextMidnight) {
		t.Fatalf("expected 00:00:00.000 of the next day to be excluded")
	}
}

func TestResolveYesterday(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)
	r, err := Resolve(Yesterday, now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.Start.Day() != 28 || r.Start.Month() != time.February {
		t.Fatalf("expected yesterday to cross the month boundary, got start %v", r.Start)
	}
	if !r.End.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("expected yesterday to end at today's midnight, got %v", r.End)
	}
}

func TestResolveWeekStartsSunday(t *testing.T) {
	// 2026-03-18 is a Wednesday
	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.Local)
	r, err := Resolve(Week, now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.Start.Weekday() != time.Sunday {
		t.Fatalf("expected week to start on Sunday, got %v", r.Start.Weekday())
	}
	if r.Start.Day() != 15 {
		t.Fatalf("expected week start 2026-03-15, got %v", r.Start)
	}
	if !r.End.Equal(r.Start.AddDate(0, 0, 7)) {
		t.Fatalf("expected a 7 day window, got end %v", r.End)
	}
}

func TestResolveMonthAndYear(t *testing.T) {
	now := time.Date(2026, 12, 31, 23, 0, 0, 0, time.Local)

	month, err := Resolve(Month, now)
	if err != nil {
		t.Fatalf("Resolve month: %v", err)
	}
	if month.Start.Day() != 1 || month.Start.Month() != time.December {
		t.Fatalf("unexpected month start %v", month.Start)
	}
	if month.End.Month() != time.January || month.End.Year() != 2027 {
		t.Fatalf("expected month to end at next January 1st, got %v", month.End)
	}

	year, err := Resolve(Year, now)
	if err != nil {
		t.Fatalf("Resolve year: %v", err)
	}
	if !year.Start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("unexpected year start %v", year.Start)
	}
	if !year.End.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("unexpected year end %v", year.End)
	}
}

func TestResolveUnknownPeriod(t *testing.T) {
	if _, err := Resolve("quarter", time.Now()); err == nil {
		t.Fatalf("expected error for unknown period")
	}
}

func TestResolveCustomInclusiveEnd(t *testing.T) {
	start := time.Date(2026, 1, 10, 8, 15, 0, 0, time.Local)
	end := time.Date(2026, 1, 20, 9, 0, 0, 0, time.Local)
	r := ResolveCustom(start, end)

	if !r.Start.Equal(time.Date(2026, 1, 10, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("expected start truncated to midnight, got %v", r.Start)
	}

	// A sale at the exact end date boundary is included
	atEndDate := time.Date(2026, 1, 20, 23, 59, 59, 999000000, time.Local)
	if !r.Contains(atEndDate) {
		t.Fatalf("expected end-of-day of the end date to be included")
	}
	if r.Contains(time.Date(2026, 1, 21, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("expected the day after the end date to be excluded")
	}
}

func TestDaySequenceContiguous(t *testing.T) {
	start := time.Date(2026, 2, 26, 14, 0, 0, 0, time.Local)
	end := time.Date(2026, 3, 2, 1, 0, 0, 0, time.Local)

	days := DaySequence(start, end)
	if len(days) != 5 {
		t.Fatalf("expected 5 days for Feb 26 to Mar 2 2026, got %d", len(days))
	}
	if DayKey(days[2]) != "2026-02-28" || DayKey(days[3]) != "2026-03-01" {
		t.Fatalf("unexpected sequence around month boundary: %s, %s", DayKey(days[2]), DayKey(days[3]))
	}
}

func TestDaySequenceLeapFebruary(t *testing.T) {
	// 2024 is a leap year
	days := DaySequence(
		time.Date(2024, 2, 28, 0, 0, 0, 0, time.Local),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
	)
	want := []string{"2024-02-28", "2024-02-29", "2024-03-01"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i, d := range days {
		if DayKey(d) != want[i] {
			t.Fatalf("day %d: expected %s, got %s", i, want[i], DayKey(d))
		}
	}
}

func TestMonthSequenceAcrossYears(t *testing.T) {
	months := MonthSequence(
		time.Date(2025, 11, 20, 0, 0, 0, 0, time.Local),
		time.Date(2026, 2, 3, 0, 0, 0, 0, time.Local),
	)
	want := []string{"2025-11", "2025-12", "2026-01", "2026-02"}
	if len(months) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(months))
	}
	for i, m := range months {
		if MonthKey(m) != want[i] {
			t.Fatalf("month %d: expected %s, got %s", i, want[i], MonthKey(m))
		}
	}
}
