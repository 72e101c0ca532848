package absence

// Hypothetical describes a what-if trip for stress testing: departure in
// StartInDays from the reference date, with DurationDays counted absent
// days. The contract assumes non-negative StartInDays and positive
// DurationDays; values outside that domain produce a well-defined but
// meaningless result, never a crash.
type Hypothetical struct {
	StartInDays  int
	DurationDays int
}

// SimResult is the outcome of a stress test.
type SimResult struct {
	Peak        int  `json:"peak"`
	WouldBreach bool `json:"would_breach"`
	Buffer      int  `json:"buffer"`
}

// Simulate injects one hypothetical trip into the combined recorded and
// planned travel, rescans, and reports whether the resulting peak reaches
// the cap. The return date lands DurationDays+1 after the exit so that,
// with both endpoints excluded, exactly DurationDays absent days result.
// The caller's trip slices are never mutated.
func Simulate(trips, planned []Trip, hyp Hypothetical, today Day) SimResult {
	exit := today.AddDays(hyp.StartInDays)
	what := Trip{
		ID:     "stress-test",
		Exit:   exit,
		Return: exit.AddDays(hyp.DurationDays + 1),
	}

	combined := make([]Trip, 0, len(trips)+len(planned)+1)
	combined = append(combined, trips...)
	combined = append(combined, planned...)
	combined = append(combined, what)

	series := BuildSeries(combined, today)
	return SimResult{
		Peak:        series.Peak,
		WouldBreach: series.Peak >= CapDays,
		Buffer:      CapDays - series.Peak,
	}
}
