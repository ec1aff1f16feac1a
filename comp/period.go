package comp

import "time"

// =============================================================================
// PERIOD - Inclusive [Start, End] date range for an evaluation
// =============================================================================

// Period is the evaluation window. Both bounds are inclusive and carry
// day granularity; times are normalized to midnight UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

// Date builds a day-granular UTC time.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Month returns the calendar-month period containing the given month.
func Month(year int, month time.Month) Period {
	start := Date(year, month, 1)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// Year returns the calendar-year period.
func Year(year int) Period {
	return Period{Start: Date(year, time.January, 1), End: Date(year, time.December, 31)}
}

// Day returns a single-day period.
func Day(t time.Time) Period {
	d := normalizeDay(t)
	return Period{Start: d, End: d}
}

func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls within [Start, End].
func (p Period) Contains(t time.Time) bool {
	d := normalizeDay(t)
	return !d.Before(normalizeDay(p.Start)) && !d.After(normalizeDay(p.End))
}

// IsValid reports whether the period is well-formed.
func (p Period) IsValid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && !p.End.Before(p.Start)
}

func (p Period) String() string {
	return "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + "]"
}
