package finance

import "time"

// =============================================================================
// DATES - all engine dates are UTC calendar days
// =============================================================================

func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func Today() time.Time { return DateOf(time.Now()) }

// DaysBetween returns whole calendar days from a to b (negative if b < a).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// MonthsBetween returns whole elapsed months from a to b. A month counts once
// the day-of-month of a has been reached again.
func MonthsBetween(a, b time.Time) int {
	a, b = DateOf(a), DateOf(b)
	if b.Before(a) {
		return -MonthsBetween(b, a)
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	if b.Day() < a.Day() {
		months--
	}
	return months
}

// =============================================================================
// DATE RANGE - inclusive [Start, End] window
// =============================================================================

// DateRange is an inclusive window of calendar days. An inverted range (End
// before Start) is well-typed but empty: it contains nothing.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: DateOf(start), End: DateOf(end)}
}

func (r DateRange) IsInverted() bool { return DateOf(r.End).Before(DateOf(r.Start)) }

func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// Contains reports whether t falls on a day inside the window.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(DateOf(r.Start)) && !d.After(DateOf(r.End))
}

// Days returns the number of calendar days in the window, 0 when inverted.
func (r DateRange) Days() int {
	if r.IsInverted() {
		return 0
	}
	return DaysBetween(r.Start, r.End) + 1
}

// Overlap intersects two windows. ok is false when they share no day.
// A zero side of other is treated as open.
func (r DateRange) Overlap(other DateRange) (DateRange, bool) {
	start, end := DateOf(r.Start), DateOf(r.End)
	if s := DateOf(other.Start); !other.Start.IsZero() && s.After(start) {
		start = s
	}
	if e := DateOf(other.End); !other.End.IsZero() && e.Before(end) {
		end = e
	}
	out := DateRange{Start: start, End: end}
	return out, !out.IsInverted()
}

func (r DateRange) String() string {
	return "[" + r.Start.Format(time.DateOnly) + ", " + r.End.Format(time.DateOnly) + "]"
}
