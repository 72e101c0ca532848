package absence_test

import (
	"testing"
	"time"

	"github.com/compass/residence-engine/absence"
)

func TestBuildSeries_NoTrips_AllZero(t *testing.T) {
	// GIVEN: No trips (or none with both dates)
	// WHEN: Scanning
	// THEN: Everything degrades to zero/empty, peak date is nil

	for _, trips := range [][]absence.Trip{
		nil,
		{{Exit: day(2024, time.January, 1)}},
	} {
		series := absence.BuildSeries(trips, day(2024, time.June, 1))
		if series.Current != 0 || series.Peak != 0 || series.PeakDate != nil {
			t.Errorf("expected zero series, got %+v", series)
		}
		if len(series.Weekly) != 0 || len(series.Monthly) != 0 {
			t.Errorf("expected empty sample sets, got %d weekly / %d monthly",
				len(series.Weekly), len(series.Monthly))
		}
	}
}

func TestBuildSeries_SingleTrip(t *testing.T) {
	// GIVEN: One 8-day trip in January
	// WHEN: Scanning at June 1
	// THEN: Current and peak are both 8, and the peak date is the first
	//       weekly sample that reaches 8 (ties keep the earliest)

	today := day(2024, time.June, 1)
	trips := []absence.Trip{trip(day(2024, time.January, 1), day(2024, time.January, 10))}
	series := absence.BuildSeries(trips, today)

	if series.Current != 8 {
		t.Errorf("expected current 8, got %d", series.Current)
	}
	if series.Peak != 8 {
		t.Errorf("expected peak 8, got %d", series.Peak)
	}
	if series.PeakDate == nil {
		t.Fatal("expected a peak date")
	}

	var firstAtPeak *absence.Day
	for i := range series.Weekly {
		if series.Weekly[i].AbsentDays == series.Peak {
			firstAtPeak = &series.Weekly[i].Date
			break
		}
	}
	if firstAtPeak == nil || !series.PeakDate.Equal(*firstAtPeak) {
		t.Errorf("peak date %v is not the first sample at peak value", series.PeakDate)
	}
}

func TestBuildSeries_WeeklyRangeAndFutureFlags(t *testing.T) {
	today := day(2024, time.June, 1)
	trips := []absence.Trip{trip(day(2024, time.January, 1), day(2024, time.January, 10))}
	series := absence.BuildSeries(trips, today)

	first := series.Weekly[0].Date
	last := series.Weekly[len(series.Weekly)-1].Date

	// Scan starts at min(earliest trip date, today-365); here the one-year
	// lookback is earlier than the January trip.
	wantStart := absence.MinDay(day(2024, time.January, 1), today.AddDays(-365))
	if !first.Equal(wantStart) {
		t.Errorf("expected first sample %s, got %s", wantStart, first)
	}
	if last.After(today.AddDays(365)) {
		t.Errorf("scan overran forecast horizon: %s", last)
	}

	for _, s := range series.Weekly {
		if s.IsFuture != s.Date.After(today) {
			t.Errorf("sample %s: wrong IsFuture flag", s.Date)
		}
	}
}

func TestBuildSeries_MonthlyBuckets(t *testing.T) {
	// GIVEN: Any datable trip
	// WHEN: Scanning
	// THEN: 18 monthly buckets at 30-day offsets -11..+6

	today := day(2024, time.June, 1)
	trips := []absence.Trip{trip(day(2024, time.January, 1), day(2024, time.January, 10))}
	series := absence.BuildSeries(trips, today)

	if len(series.Monthly) != 18 {
		t.Fatalf("expected 18 monthly buckets, got %d", len(series.Monthly))
	}
	if !series.Monthly[0].Date.Equal(today.AddDays(-11 * 30)) {
		t.Errorf("first bucket at %s, expected %s", series.Monthly[0].Date, today.AddDays(-330))
	}
	if !series.Monthly[17].Date.Equal(today.AddDays(6 * 30)) {
		t.Errorf("last bucket at %s, expected %s", series.Monthly[17].Date, today.AddDays(180))
	}
}

func TestBuildSeries_PeakSeesPlannedTravel(t *testing.T) {
	// GIVEN: A past trip and a large planned trip
	// WHEN: Scanning the combined set
	// THEN: The forecast peak includes the planned absence

	today := day(2024, time.June, 1)
	past := trip(day(2024, time.May, 1), day(2024, time.May, 10)) // 8 days
	planned := trip(today.AddDays(30), today.AddDays(30).AddDays(41)) // 40 days

	series := absence.BuildSeries([]absence.Trip{past, planned}, today)
	if series.Peak != 48 {
		t.Errorf("expected projected peak 48, got %d", series.Peak)
	}
	if series.Current != 8 {
		t.Errorf("expected current 8 (planned travel not yet happened), got %d", series.Current)
	}
}
