// Package advisor turns absence accounting results into prioritized,
// actionable advisories. It evaluates a fixed, ordered set of independent
// rules over a snapshot-derived state; all applicable rules fire, none
// suppresses another, and generation order is display-priority order.
package advisor

import (
	"github.com/compass/residence-engine/absence"
	"github.com/compass/residence-engine/qualify"
)

// Kind is the severity class of an insight.
type Kind string

const (
	KindCritical Kind = "critical"
	KindWarning  Kind = "warning"
	KindInfo     Kind = "info"
	KindSuccess  Kind = "success"
)

// Insight is a single advisory. Insights are ephemeral: regenerated on
// every recomputation, never persisted.
type Insight struct {
	Kind   Kind   `json:"kind"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Action string `json:"action"`
}

// State is everything the rules evaluate against. All fields derive from
// one consistent trip/settings snapshot; identical states always produce
// an identical, identically ordered insight list.
type State struct {
	Today   absence.Day
	Past    []absence.Trip
	Planned []absence.Trip

	// Rolling is the scan over recorded travel only; Projected additionally
	// includes planned trips.
	Rolling   absence.Series
	Projected absence.Series

	// Timeline is nil when no residence start date is configured.
	Timeline *qualify.Timeline
}

// BuildState assembles rule-engine state from a snapshot.
func BuildState(past, planned []absence.Trip, timeline *qualify.Timeline, today absence.Day) State {
	combined := make([]absence.Trip, 0, len(past)+len(planned))
	combined = append(combined, past...)
	combined = append(combined, planned...)

	return State{
		Today:     today,
		Past:      past,
		Planned:   planned,
		Rolling:   absence.BuildSeries(past, today),
		Projected: absence.BuildSeries(combined, today),
		Timeline:  timeline,
	}
}
