package qualify_test

import (
	"testing"
	"time"

	"github.com/compass/residence-engine/absence"
	"github.com/compass/residence-engine/qualify"
)

func day(year int, month time.Month, d int) absence.Day {
	return absence.NewDay(year, month, d)
}

func TestNewTimeline_FiveYearPeriod(t *testing.T) {
	// GIVEN: Residence started 2020-01-01, 5 qualifying years
	// WHEN: Projecting the timeline
	// THEN: Qualifying 2025-01-01, early application 2024-12-04 (28-day rule)

	tl := qualify.NewTimeline(day(2020, time.January, 1), 5)

	if !tl.QualifyingDate.Equal(day(2025, time.January, 1)) {
		t.Errorf("qualifying date = %s, want 2025-01-01", tl.QualifyingDate)
	}
	if !tl.EarlyApplicationDate.Equal(day(2024, time.December, 4)) {
		t.Errorf("early application date = %s, want 2024-12-04", tl.EarlyApplicationDate)
	}
}

func TestTimeline_Complete(t *testing.T) {
	tl := qualify.NewTimeline(day(2020, time.January, 1), 5)

	if tl.Complete(day(2024, time.December, 31)) {
		t.Error("period should not be complete the day before the qualifying date")
	}
	if !tl.Complete(day(2025, time.January, 1)) {
		t.Error("period should be complete on the qualifying date")
	}
}

func TestDaysUntil(t *testing.T) {
	today := day(2024, time.June, 1)
	if got := qualify.DaysUntil(day(2024, time.June, 11), today); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
	if got := qualify.DaysUntil(day(2024, time.May, 31), today); got != -1 {
		t.Errorf("expected -1 for a passed date, got %d", got)
	}
}

func TestProgressPercent_ClampsBothEnds(t *testing.T) {
	start := day(2020, time.January, 1)
	end := day(2025, time.January, 1)

	if got := qualify.ProgressPercent(day(2019, time.June, 1), start, end); got != 0 {
		t.Errorf("before start: expected 0, got %d", got)
	}
	if got := qualify.ProgressPercent(day(2026, time.June, 1), start, end); got != 100 {
		t.Errorf("after end: expected 100, got %d", got)
	}

	mid := qualify.ProgressPercent(day(2022, time.July, 1), start, end)
	if mid < 45 || mid > 55 {
		t.Errorf("midway progress out of range: %d", mid)
	}
}

func TestProgressPercent_DegenerateSpan(t *testing.T) {
	d := day(2024, time.June, 1)
	if got := qualify.ProgressPercent(d, d, d); got != 0 {
		t.Errorf("expected 0 for zero-length span, got %d", got)
	}
}
