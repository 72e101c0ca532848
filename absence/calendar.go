package absence

import (
	"strings"
	"time"
)

// =============================================================================
// DAY - Calendar date abstraction (this IS a day-counting system)
// =============================================================================

// Day is a calendar date normalized to UTC midnight. All absence arithmetic
// runs on Day so that time-of-day and zone offsets can never perturb a day
// count.
type Day struct {
	t time.Time
}

// Constructors

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates an arbitrary time to its calendar date.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar date. Callers that need a stable
// reference date across a computation should capture it once and pass it down.
func Today() Day {
	return DayOf(time.Now())
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, err
	}
	return DayOf(t), nil
}

// Comparison

func (d Day) Before(other Day) bool        { return d.t.Before(other.t) }
func (d Day) After(other Day) bool         { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool         { return d.t.Equal(other.t) }
func (d Day) BeforeOrEqual(other Day) bool { return !d.After(other) }
func (d Day) AfterOrEqual(other Day) bool  { return !d.Before(other) }
func (d Day) IsZero() bool                 { return d.t.IsZero() }

// Arithmetic

func (d Day) AddDays(n int) Day  { return DayOf(d.t.AddDate(0, 0, n)) }
func (d Day) AddYears(n int) Day { return DayOf(d.t.AddDate(n, 0, 0)) }

// DaysBetween returns the signed number of calendar days from one date to
// another. Both dates are already midnight-normalized, so the division is
// exact.
func DaysBetween(from, to Day) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// MinDay and MaxDay pick the earlier/later of two dates.

func MinDay(a, b Day) Day {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDay(a, b Day) Day {
	if a.After(b) {
		return a
	}
	return b
}

// Properties

func (d Day) Year() int         { return d.t.Year() }
func (d Day) Month() time.Month { return d.t.Month() }
func (d Day) DayOfMonth() int   { return d.t.Day() }
func (d Day) Time() time.Time   { return d.t }

func (d Day) String() string { return d.t.Format("2006-01-02") }

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a "YYYY-MM-DD" date.
func (d *Day) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// FormatLong renders a date the way it appears in advisories and reports,
// e.g. "04 Dec 2024".
func (d Day) FormatLong() string { return d.t.Format("02 Jan 2006") }

// FormatShort renders a compact date for weekly series labels, e.g. "04 Dec".
func (d Day) FormatShort() string { return d.t.Format("02 Jan") }

// MonthLabel renders a compact month label for series buckets, e.g. "Dec 24".
func (d Day) MonthLabel() string { return d.t.Format("Jan 06") }
