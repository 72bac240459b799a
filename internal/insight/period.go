// Package insight turns raw transaction and goal records into the derived
// values shown on dashboards and fed into the chat prompt. Everything in this
// package is a synchronous computation over already-fetched data; fetching is
// the store's job.
package insight

import (
	"log/slog"
	"time"
)

const (
	Week    Period = "week"
	Month   Period = "month"
	Quarter Period = "quarter"
	Year    Period = "year"
)

// Period is a requested reporting window keyword.
type Period string

// PeriodRange is a concrete inclusive date range. Start never exceeds End.
type PeriodRange struct {
	Start time.Time
	End   time.Time
}

// ParsePeriod maps a request parameter to a Period. Unknown or empty values
// fall back to Month; an unknown keyword is not an error.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case Week, Month, Quarter, Year:
		return Period(s)
	case "":
		return Month
	default:
		slog.Debug("Unknown period keyword, defaulting to month", "keyword", s)
		return Month
	}
}

// Resolve computes the concrete date bounds for a period containing now.
//
//	week    -> [now - 7 days, now]
//	month   -> [first day of now's month, last instant of that month]
//	quarter -> [first day of the 3-month block containing now, last instant of that block]
//	year    -> [Jan 1, last instant of Dec 31]
func Resolve(p Period, now time.Time) PeriodRange {
	switch p {
	case Week:
		return PeriodRange{Start: now.AddDate(0, 0, -7), End: now}
	case Quarter:
		block := (int(now.Month()) - 1) / 3
		start := time.Date(now.Year(), time.Month(3*block+1), 1, 0, 0, 0, 0, now.Location())
		return PeriodRange{Start: start, End: start.AddDate(0, 3, 0).Add(-time.Nanosecond)}
	case Year:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return PeriodRange{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}
	default: // Month, and the fallback policy for anything else
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return PeriodRange{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
	}
}

// Previous returns the immediately preceding period of equal length. For
// calendar periods this is the prior calendar block, not a fixed-length
// shift, so month-over-month comparisons line up with real months.
func Previous(p Period, r PeriodRange) PeriodRange {
	if p == Week {
		return PeriodRange{Start: r.Start.AddDate(0, 0, -7), End: r.Start}
	}
	// An instant before the current block's start lands inside the prior block.
	return Resolve(p, r.Start.Add(-time.Nanosecond))
}
