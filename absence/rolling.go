package absence

// WindowDays is the length of the rolling window in calendar days.
const WindowDays = 365

// Window returns the trailing 365-day window ending at the given date,
// both endpoints inclusive.
func Window(end Day) Interval {
	return Interval{Start: end.AddDays(-(WindowDays - 1)), End: end}
}

// RollingTotal computes the total absent days whose derived interval
// overlaps the trailing 365-day window ending at windowEnd. Trips missing
// either date, or whose interval falls entirely outside the window,
// contribute zero. The reduction is order-independent.
//
// Precondition: trips must be pairwise non-overlapping in time. Overlapping
// entries are a data-quality concern of the owning application and would be
// double-counted here. Cost is O(len(trips)) per call.
func RollingTotal(trips []Trip, windowEnd Day) int {
	window := Window(windowEnd)

	total := 0
	for _, t := range trips {
		if !t.HasDates() {
			continue
		}
		clipped := t.Interval().Clip(window)
		total += clipped.Days()
	}
	return total
}
