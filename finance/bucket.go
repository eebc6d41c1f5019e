package finance

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME BUCKETER - groups dates into chronologically sortable period keys
// =============================================================================

// Granularity is the time-grouping unit for series.
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

func (g Granularity) Valid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityQuarter, GranularityYear:
		return true
	}
	return false
}

// ParseGranularity accepts the query form of a granularity. Empty means month.
func ParseGranularity(s string) (Granularity, error) {
	if s == "" {
		return GranularityMonth, nil
	}
	g := Granularity(s)
	if !g.Valid() {
		return "", InvalidArgument("groupBy", "unsupported granularity %q", s)
	}
	return g, nil
}

// BucketKey identifies a period. Keys of one granularity sort chronologically
// as plain strings:
//
//	day     2025-03-14
//	week    2025-W11   (ISO-8601 week-numbering year)
//	month   2025-03
//	quarter 2025-Q1
//	year    2025
type BucketKey string

// Bucket classifies t into its period. All bucketing happens in UTC so the
// same instant always lands in the same bucket.
func Bucket(t time.Time, g Granularity) (BucketKey, error) {
	u := t.UTC()
	switch g {
	case GranularityDay:
		return BucketKey(u.Format(time.DateOnly)), nil
	case GranularityWeek:
		year, week := u.ISOWeek()
		return BucketKey(fmt.Sprintf("%04d-W%02d", year, week)), nil
	case GranularityMonth:
		return BucketKey(fmt.Sprintf("%04d-%02d", u.Year(), int(u.Month()))), nil
	case GranularityQuarter:
		return BucketKey(fmt.Sprintf("%04d-Q%d", u.Year(), (int(u.Month())-1)/3+1)), nil
	case GranularityYear:
		return BucketKey(fmt.Sprintf("%04d", u.Year())), nil
	}
	return "", InvalidArgument("granularity", "unsupported granularity %q", string(g))
}

// BucketStart returns the first day of the period containing t.
// Weeks start on Monday.
func BucketStart(t time.Time, g Granularity) (time.Time, error) {
	d := DateOf(t)
	switch g {
	case GranularityDay:
		return d, nil
	case GranularityWeek:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset), nil
	case GranularityMonth:
		return NewDate(d.Year(), d.Month(), 1), nil
	case GranularityQuarter:
		q := (int(d.Month()) - 1) / 3
		return NewDate(d.Year(), time.Month(q*3+1), 1), nil
	case GranularityYear:
		return NewDate(d.Year(), time.January, 1), nil
	}
	return time.Time{}, InvalidArgument("granularity", "unsupported granularity %q", string(g))
}
