/*
Package absence provides the continuous-residence absence accounting engine.

PURPOSE:
  This package contains the core algorithms for tracking cumulative time
  spent outside a jurisdiction against the rolling 180-days-in-12-months
  absence cap: interval math over travel records, windowed aggregation,
  time-series scanning, risk classification, and stress-test simulation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Trip: An immutable travel record (exit date, return date, note)
  - Interval: The derived inclusive range of days counted as absent
  - Sample / Series: Rolling-total observations produced by the scanner

DESIGN PRINCIPLES:
  1. Snapshot in, records out: every function takes an explicit trip
     snapshot and reference date and returns new value records. The engine
     holds no state and reads no ambient clock or store.
  2. Degenerate values, not errors: malformed trips (return on or before
     exit, missing dates) contribute zero days instead of failing a
     computation that combines many trips.
  3. Exclusive endpoints: departure and arrival days are never counted as
     absent. Exit Jan 1, return Jan 10 = 8 absent days (Jan 2-9). This
     definition lives in one place (Trip.AbsentDays) and everything else
     derives from it.

USAGE:
  trips := []absence.Trip{{Exit: exit, Return: ret}}
  total := absence.RollingTotal(trips, absence.Today())
  level := absence.Classify(total)

SEE ALSO:
  - rolling.go: Rolling 365-day window aggregation
  - scanner.go: Historical + forecast series and peak detection
  - risk.go: Risk levels and the Risk Buffer Index
  - simulate.go: "Would this trip breach the cap?" stress tests
*/
package absence

// =============================================================================
// TRIP - Immutable travel record
// =============================================================================

// Trip is a single period of travel outside the jurisdiction. A Trip is a
// value: edits and deletes in the owning application produce a new snapshot,
// never in-place mutation visible to the engine.
type Trip struct {
	ID     string
	Exit   Day
	Return Day
	Note   string
}

// HasDates reports whether both travel dates are present. Trips missing
// either date are excluded from all aggregation.
func (t Trip) HasDates() bool {
	return !t.Exit.IsZero() && !t.Return.IsZero()
}

// AbsentDays returns the number of days counted as absent for this trip,
// with both the departure and the arrival day excluded. A trip whose return
// is on or before its exit yields zero.
func (t Trip) AbsentDays() int {
	if !t.HasDates() || t.Return.BeforeOrEqual(t.Exit) {
		return 0
	}
	n := DaysBetween(t.Exit, t.Return) - 1
	if n < 0 {
		return 0
	}
	return n
}

// Interval returns the inclusive range of absent days derived from the trip:
// [Exit+1, Return-1]. For a next-day return the interval is empty.
func (t Trip) Interval() Interval {
	return Interval{Start: t.Exit.AddDays(1), End: t.Return.AddDays(-1)}
}

// =============================================================================
// INTERVAL - Inclusive day range
// =============================================================================

// Interval is an inclusive range of calendar days. An interval whose End
// precedes its Start is empty.
type Interval struct {
	Start Day
	End   Day
}

func (iv Interval) Empty() bool {
	return iv.End.Before(iv.Start)
}

// Days returns the number of days in the interval, zero if empty.
func (iv Interval) Days() int {
	if iv.Empty() {
		return 0
	}
	return DaysBetween(iv.Start, iv.End) + 1
}

// Clip intersects the interval with another. The result may be empty.
func (iv Interval) Clip(window Interval) Interval {
	return Interval{
		Start: MaxDay(iv.Start, window.Start),
		End:   MinDay(iv.End, window.End),
	}
}

// =============================================================================
// SAMPLE / SERIES - Scanner output records
// =============================================================================

// Sample is one rolling-total observation. Purely informational, never
// persisted.
type Sample struct {
	Date       Day    `json:"date"`
	Label      string `json:"label"`
	AbsentDays int    `json:"absent_days"`
	IsFuture   bool   `json:"is_future"`
}

// Series is the scanner's full output: the current rolling total, the
// all-time peak of the weekly scan, and the weekly and monthly sample sets.
type Series struct {
	Current  int
	Peak     int
	PeakDate *Day
	Weekly   []Sample
	Monthly  []Sample
}
