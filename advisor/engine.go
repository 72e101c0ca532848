/*
engine.go - The ordered advisory rule set

PURPOSE:
  Each rule is an independent pure function (State) -> []Insight. The
  engine evaluates them in a fixed order and concatenates the results,
  which makes every rule unit-testable on its own and the combined output
  deterministic.

RULE ORDER (also display priority):
  1. Breach / near-breach / amber zone on the current rolling total
  2. Planned-travel impact on the projected peak
  3. Seasonal travel concentration
  4. Qualification proximity
  5. Safe-travel guidance
  6. Capacity forecast from trip statistics
  7. Roll-off forecast (absences leaving the window within 90 days)
  8. Single-trip overrun (one insight per offending trip)

No rule performs I/O or consults a clock; the reference date comes in with
the state.
*/
package advisor

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/compass/residence-engine/absence"
	"github.com/compass/residence-engine/qualify"
)

type rule func(State) []Insight

// rules in evaluation order.
var rules = []rule{
	ruleBreachStatus,
	rulePlannedImpact,
	ruleSeasonalPattern,
	ruleQualificationProximity,
	ruleSafeWindow,
	ruleCapacityForecast,
	ruleRollOff,
	ruleSingleTripOverrun,
}

// Generate runs every rule against the state and returns the concatenated
// insight list in display order.
func Generate(state State) []Insight {
	var insights []Insight
	for _, r := range rules {
		insights = append(insights, r(state)...)
	}
	return insights
}

// -----------------------------------------------------------------------------
// Rule 1: breach / near-breach / amber zone
// -----------------------------------------------------------------------------

func ruleBreachStatus(s State) []Insight {
	current := s.Rolling.Current
	buffer := absence.CapDays - current

	switch {
	case current >= absence.CapDays:
		return []Insight{{
			Kind:  KindCritical,
			Title: "Continuous Residence Breach",
			Body: fmt.Sprintf("You have %d absence days in a rolling 12-month window, exceeding the %d-day limit. Seek immigration legal advice immediately.",
				current, absence.CapDays),
			Action: "Contact a solicitor urgently",
		}}

	case current >= absence.ThresholdRed:
		body := fmt.Sprintf("Rolling absence is at %d/%d. ", current, absence.CapDays)
		if buffer <= 5 {
			body += "Do not travel."
		} else {
			body += "Avoid all non-essential travel."
		}
		return []Insight{{
			Kind:   KindCritical,
			Title:  fmt.Sprintf("Only %d Days Until Breach", buffer),
			Body:   body,
			Action: "Pause all travel plans",
		}}

	case current >= absence.ThresholdAmber:
		maxTrip := buffer - 10
		if maxTrip < 1 {
			maxTrip = 1
		}
		return []Insight{{
			Kind:  KindWarning,
			Title: "Amber Zone - Caution Required",
			Body: fmt.Sprintf("At %d days you have a %d-day buffer. Keep trips under %d days.",
				current, buffer, maxTrip),
			Action: fmt.Sprintf("Max trip: %d days", maxTrip),
		}}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Rule 2: planned-travel impact
// -----------------------------------------------------------------------------

func rulePlannedImpact(s State) []Insight {
	if len(s.Planned) == 0 {
		return nil
	}

	peak := s.Projected.Peak
	if peak >= absence.ThresholdAmber {
		var severity string
		switch {
		case peak >= absence.CapDays:
			severity = "This would breach the cap."
		case peak >= absence.ThresholdRed:
			severity = "This enters the RED zone."
		default:
			severity = "This enters the AMBER zone."
		}
		return []Insight{{
			Kind:  KindWarning,
			Title: "Planned Travel Creates Risk",
			Body: fmt.Sprintf("%d planned trip(s) would push the rolling total to %d days. %s",
				len(s.Planned), peak, severity),
			Action: "Review planned trips",
		}}
	}

	return []Insight{{
		Kind:  KindInfo,
		Title: "Planned Travel Assessed",
		Body: fmt.Sprintf("%d planned trip(s) add %d days for a projected peak of %d days. Within safe limits.",
			len(s.Planned), peak-s.Rolling.Current, peak),
		Action: "Continue monitoring",
	}}
}

// -----------------------------------------------------------------------------
// Rule 3: seasonal travel concentration
// -----------------------------------------------------------------------------

func ruleSeasonalPattern(s State) []Insight {
	if len(s.Past) < 3 {
		return nil
	}

	var counts [12]int
	for _, t := range s.Past {
		if t.Exit.IsZero() {
			continue
		}
		counts[int(t.Exit.Month())-1]++
	}

	// Earliest month wins a tie.
	peakMonth := 0
	for m := 1; m < 12; m++ {
		if counts[m] > counts[peakMonth] {
			peakMonth = m
		}
	}
	if counts[peakMonth] < 2 {
		return nil
	}

	name := time.Month(peakMonth + 1).String()[:3]
	return []Insight{{
		Kind:  KindInfo,
		Title: fmt.Sprintf("Peak Travel Month: %s", name),
		Body: fmt.Sprintf("You travel most in %s (%d trips). Plan your buffer ahead of that season.",
			name, counts[peakMonth]),
		Action: "Budget ahead of peak months",
	}}
}

// -----------------------------------------------------------------------------
// Rule 4: qualification proximity
// -----------------------------------------------------------------------------

func ruleQualificationProximity(s State) []Insight {
	if s.Timeline == nil {
		return nil
	}

	tl := *s.Timeline
	daysLeft := qualify.DaysUntil(tl.QualifyingDate, s.Today)
	daysToEarly := qualify.DaysUntil(tl.EarlyApplicationDate, s.Today)

	switch {
	case daysLeft <= 0:
		return []Insight{{
			Kind:  KindSuccess,
			Title: "Qualifying Period Complete",
			Body: fmt.Sprintf("You have completed your %d-year qualifying period. Your full qualifying history will be assessed. Apply now.",
				tl.Years),
			Action: "Submit settlement application",
		}}

	case daysToEarly > 0 && daysToEarly <= 30:
		return []Insight{{
			Kind:  KindWarning,
			Title: fmt.Sprintf("Application Window Opens in %d Days", daysToEarly),
			Body: fmt.Sprintf("You can submit from %s (28 days before your qualifying date). Start gathering payslips, travel records and employer letters.",
				tl.EarlyApplicationDate.FormatLong()),
			Action: fmt.Sprintf("Apply from %s", tl.EarlyApplicationDate.FormatLong()),
		}}

	case daysLeft <= 180:
		return []Insight{{
			Kind:   KindInfo,
			Title:  fmt.Sprintf("%d Days Until Qualification", daysLeft),
			Body:   "Final stretch: avoid absences that push the rolling total over the cap. The last 12 months receive the most scrutiny.",
			Action: "Minimise travel now",
		}}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Rule 5: safe-travel guidance
// -----------------------------------------------------------------------------

func ruleSafeWindow(s State) []Insight {
	current := s.Rolling.Current
	if current >= absence.ThresholdAmber {
		return nil
	}

	maxSingle := absence.CapDays - current - 10
	if maxSingle < 0 {
		maxSingle = 0
	}
	if maxSingle > 30 {
		maxSingle = 30
	}
	inThirtyDays := absence.RollingTotal(s.Past, s.Today.AddDays(30))

	return []Insight{{
		Kind:  KindSuccess,
		Title: "Safe Travel Window",
		Body: fmt.Sprintf("Buffer: %d days. Recommended max single trip: %d days. In 30 days your rolling total will be %d days.",
			absence.CapDays-current, maxSingle, inThirtyDays),
		Action: fmt.Sprintf("Safe for up to %d days", maxSingle),
	}}
}

// -----------------------------------------------------------------------------
// Rule 6: capacity forecast
// -----------------------------------------------------------------------------

func ruleCapacityForecast(s State) []Insight {
	if len(s.Past) < 2 {
		return nil
	}

	total := 0
	longest := 0
	for _, t := range s.Past {
		d := t.AbsentDays()
		total += d
		if d > longest {
			longest = d
		}
	}

	avg := decimal.NewFromInt(int64(total)).
		Div(decimal.NewFromInt(int64(len(s.Past)))).
		Round(0)
	if avg.IsZero() {
		return nil
	}

	buffer := absence.CapDays - s.Rolling.Current
	capacity := decimal.NewFromInt(int64(buffer)).Div(avg).Floor().IntPart()
	if capacity < 0 {
		capacity = 0
	}

	return []Insight{{
		Kind:  KindInfo,
		Title: "Travel Capacity Forecast",
		Body: fmt.Sprintf("Average trip: %s days, roughly %d more trips before the approach threshold. Longest trip on record: %d days.",
			avg.String(), capacity, longest),
		Action: fmt.Sprintf("Budget %s days per trip", avg.String()),
	}}
}

// -----------------------------------------------------------------------------
// Rule 7: roll-off forecast
// -----------------------------------------------------------------------------

func ruleRollOff(s State) []Insight {
	freed := 0
	var soonest absence.Day
	found := false

	for _, t := range s.Past {
		if t.Return.IsZero() {
			continue
		}
		rollOff := t.Return.AddDays(absence.WindowDays)
		daysTo := absence.DaysBetween(s.Today, rollOff)
		if daysTo <= 0 || daysTo > 90 {
			continue
		}
		freed += t.AbsentDays()
		if !found || rollOff.Before(soonest) {
			soonest = rollOff
		}
		found = true
	}
	if !found {
		return nil
	}

	return []Insight{{
		Kind:  KindSuccess,
		Title: fmt.Sprintf("%d Days Roll Off Soon", freed),
		Body: fmt.Sprintf("%d absence days drop out of your rolling window within 90 days (by %s). Your buffer increases automatically.",
			freed, soonest.FormatLong()),
		Action: fmt.Sprintf("Good time to travel after %s", soonest.FormatLong()),
	}}
}

// -----------------------------------------------------------------------------
// Rule 8: single-trip overrun
// -----------------------------------------------------------------------------

func ruleSingleTripOverrun(s State) []Insight {
	var insights []Insight
	for _, t := range s.Past {
		days := t.AbsentDays()
		if days <= absence.CapDays {
			continue
		}
		insights = append(insights, Insight{
			Kind:  KindCritical,
			Title: "Single Trip Exceeds 180 Days",
			Body: fmt.Sprintf("Trip %s to %s was %d days absent. A single trip longer than %d days breaks continuous residence regardless of the rolling total.",
				t.Exit.FormatLong(), t.Return.FormatLong(), days, absence.CapDays),
			Action: "Seek legal advice immediately",
		})
	}
	return insights
}
