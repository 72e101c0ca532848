/*
scanner.go - Rolling-total time series and peak detection

PURPOSE:
  Samples RollingTotal across a date range to produce the historical and
  forecast view of a travel history, and finds the all-time peak of the
  rolling total (value and first date reached).

SAMPLING:
  Weekly:  7-day steps from min(earliest trip date, today-365) through
           today+365. This covers the full recorded history plus a one-year
           forecast over any planned travel included in the snapshot.
  Monthly: fixed 30-day-multiple offsets from -11 to +6 relative to today
           (18 buckets), a coarser view of roughly one trailing year and a
           half-year forecast.

PEAK:
  The maximum weekly sample. Comparison is strict, so ties keep the
  earliest occurrence.

COST:
  O(trips x samples). Input sizes are user-entered travel histories (tens
  to low hundreds of trips), so the naive per-sample scan is fine; an
  event-based sweep over interval start/end deltas would drop this to
  O(trips + samples) if it ever mattered.
*/
package absence

// BuildSeries scans the rolling total across the trip history and forecast
// horizon. Trips missing either date are ignored. With no datable trips the
// result is all zeroes with a nil PeakDate.
func BuildSeries(trips []Trip, today Day) Series {
	valid := make([]Trip, 0, len(trips))
	for _, t := range trips {
		if t.HasDates() {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return Series{}
	}

	start := today.AddDays(-WindowDays)
	for _, t := range valid {
		start = MinDay(start, t.Exit)
		start = MinDay(start, t.Return)
	}
	end := today.AddDays(WindowDays)

	series := Series{Current: RollingTotal(valid, today)}

	for d := start; d.BeforeOrEqual(end); d = d.AddDays(7) {
		total := RollingTotal(valid, d)
		if total > series.Peak {
			series.Peak = total
			peakDate := d
			series.PeakDate = &peakDate
		}
		series.Weekly = append(series.Weekly, Sample{
			Date:       d,
			Label:      d.FormatShort(),
			AbsentDays: total,
			IsFuture:   d.After(today),
		})
	}

	for i := -11; i <= 6; i++ {
		d := today.AddDays(i * 30)
		series.Monthly = append(series.Monthly, Sample{
			Date:       d,
			Label:      d.MonthLabel(),
			AbsentDays: RollingTotal(valid, d),
			IsFuture:   d.After(today),
		})
	}

	return series
}
