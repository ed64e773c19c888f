package calendar

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestNewTimeRange_Invalid(t *testing.T) {
	if _, err := NewTimeRange(time.Time{}, time.Time{}); err == nil {
		t.Fatalf("expected error for zero times, got nil")
	}

	start := mustTime(t, 2025, 1, 1, 10, 0)
	if _, err := NewTimeRange(start, start); err == nil {
		t.Fatalf("expected error for empty range, got nil")
	}
}

func TestNormalizeTimeRange_SwappedBounds(t *testing.T) {
	start := mustTime(t, 2025, 1, 1, 12, 0)
	end := mustTime(t, 2025, 1, 1, 10, 0)

	tr, err := NormalizeTimeRange(start, end, time.UTC, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !tr.Start.Equal(end) || !tr.End.Equal(start) {
		t.Fatalf("expected Start=%v End=%v, got %v", end, start, tr)
	}
}

func TestNormalizeTimeRange_MaxDuration(t *testing.T) {
	start := mustTime(t, 2025, 1, 1, 10, 0)
	end := mustTime(t, 2025, 1, 1, 15, 0)
	maxDuration := 2 * time.Hour

	tr, err := NormalizeTimeRange(start, end, time.UTC, maxDuration)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tr.Duration() != maxDuration {
		t.Fatalf("expected duration %v, got %v", maxDuration, tr.Duration())
	}
}

func TestOverlaps_HalfOpen(t *testing.T) {
	a := TimeRange{Start: mustTime(t, 2025, 1, 1, 10, 0), End: mustTime(t, 2025, 1, 1, 11, 0)}

	// Касание концами — не пересечение: [10,11) и [11,12).
	b := TimeRange{Start: mustTime(t, 2025, 1, 1, 11, 0), End: mustTime(t, 2025, 1, 1, 12, 0)}
	if a.Overlaps(b) {
		t.Fatalf("touching ranges must not overlap")
	}

	c := TimeRange{Start: mustTime(t, 2025, 1, 1, 10, 30), End: mustTime(t, 2025, 1, 1, 11, 30)}
	if !a.Overlaps(c) {
		t.Fatalf("expected overlap between %v and %v", a, c)
	}
	if !c.Overlaps(a) {
		t.Fatalf("overlap must be symmetric")
	}

	// Полное вложение.
	d := TimeRange{Start: mustTime(t, 2025, 1, 1, 10, 15), End: mustTime(t, 2025, 1, 1, 10, 45)}
	if !a.Overlaps(d) {
		t.Fatalf("containment must count as overlap")
	}
}

func TestOverlaps_CrossMidnightByInstant(t *testing.T) {
	// Занятость 23:00–01:00 следующего дня сравнивается по моментам
	// времени, а не по совпадению дат.
	busy := TimeRange{
		Start: mustTime(t, 2025, 1, 1, 23, 0),
		End:   mustTime(t, 2025, 1, 2, 1, 0),
	}
	slot := TimeRange{
		Start: mustTime(t, 2025, 1, 2, 0, 30),
		End:   mustTime(t, 2025, 1, 2, 1, 30),
	}
	if !slot.Overlaps(busy) {
		t.Fatalf("cross-midnight busy interval must block the slot")
	}

	nextDay := TimeRange{
		Start: mustTime(t, 2025, 1, 2, 9, 0),
		End:   mustTime(t, 2025, 1, 2, 10, 0),
	}
	if nextDay.Overlaps(busy) {
		t.Fatalf("morning slot must not be blocked")
	}
}

func TestOverlapsAny(t *testing.T) {
	slot := TimeRange{Start: mustTime(t, 2025, 1, 1, 10, 0), End: mustTime(t, 2025, 1, 1, 11, 0)}
	existing := []TimeRange{
		{Start: mustTime(t, 2025, 1, 1, 8, 0), End: mustTime(t, 2025, 1, 1, 9, 0)},
		{Start: mustTime(t, 2025, 1, 1, 10, 30), End: mustTime(t, 2025, 1, 1, 12, 0)},
	}

	overlaps, conflicts := slot.OverlapsAny(existing)
	if !overlaps {
		t.Fatalf("expected overlap")
	}
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}

	overlaps, conflicts = slot.OverlapsAny(nil)
	if overlaps || conflicts != nil {
		t.Fatalf("empty existing must not conflict")
	}
}
