// Package qualify projects the qualifying-period timeline for a settlement
// application: the date the required continuous-residence duration is met
// and the earliest date an application can be submitted (28 days before).
// Pure date arithmetic over the settings snapshot; recomputed on every
// settings change.
package qualify

import (
	"github.com/shopspring/decimal"

	"github.com/compass/residence-engine/absence"
)

// EarlyApplicationDays is how far before the qualifying date an application
// may be submitted.
const EarlyApplicationDays = 28

// Timeline is the projected eligibility schedule.
type Timeline struct {
	Start                absence.Day
	Years                int
	QualifyingDate       absence.Day
	EarlyApplicationDate absence.Day
}

// NewTimeline computes the timeline from a residence start date and the
// required duration in calendar years.
func NewTimeline(start absence.Day, years int) Timeline {
	qd := start.AddYears(years)
	return Timeline{
		Start:                start,
		Years:                years,
		QualifyingDate:       qd,
		EarlyApplicationDate: qd.AddDays(-EarlyApplicationDays),
	}
}

// Complete reports whether the qualifying period has been served as of
// today.
func (tl Timeline) Complete(today absence.Day) bool {
	return DaysUntil(tl.QualifyingDate, today) <= 0
}

// DaysUntil returns the number of calendar days from today to the given
// date; zero or negative once the date has arrived.
func DaysUntil(date, today absence.Day) int {
	return absence.DaysBetween(today, date)
}

// ProgressPercent returns how far today sits between start and end on a
// 0-100 scale, clamped at both ends. A degenerate span (end not after
// start) reports zero.
func ProgressPercent(today, start, end absence.Day) int {
	span := absence.DaysBetween(start, end)
	if span <= 0 {
		return 0
	}
	elapsed := absence.DaysBetween(start, today)

	pct := decimal.NewFromInt(int64(elapsed)).
		Div(decimal.NewFromInt(int64(span))).
		Mul(decimal.NewFromInt(100)).
		Round(0)

	p := int(pct.IntPart())
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
