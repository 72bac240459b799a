package insight

import (
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	now := time.Date(2025, 5, 14, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		period    Period
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "week is a rolling seven days",
			period:    Week,
			wantStart: time.Date(2025, 5, 7, 15, 30, 0, 0, time.UTC),
			wantEnd:   now,
		},
		{
			name:      "month covers the calendar month",
			period:    Month,
			wantStart: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			name:      "quarter covers the three-month block",
			period:    Quarter,
			wantStart: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			name:      "year covers the calendar year",
			period:    Year,
			wantStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			name:      "unknown keyword falls back to month",
			period:    Period("fortnight"),
			wantStart: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.period, now)
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("Resolve() start = %v, want %v", got.Start, tt.wantStart)
			}
			if !got.End.Equal(tt.wantEnd) {
				t.Errorf("Resolve() end = %v, want %v", got.End, tt.wantEnd)
			}
			if got.Start.After(got.End) {
				t.Errorf("Resolve() start %v after end %v", got.Start, got.End)
			}
		})
	}
}

func TestResolve_QuarterBlocks(t *testing.T) {
	tests := []struct {
		month     time.Month
		wantStart time.Month
	}{
		{time.January, time.January},
		{time.March, time.January},
		{time.April, time.April},
		{time.September, time.July},
		{time.December, time.October},
	}

	for _, tt := range tests {
		now := time.Date(2025, tt.month, 15, 0, 0, 0, 0, time.UTC)
		got := Resolve(Quarter, now)
		if got.Start.Month() != tt.wantStart {
			t.Errorf("Resolve(Quarter) for %v starts %v, want %v", tt.month, got.Start.Month(), tt.wantStart)
		}
	}
}

func TestPrevious(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("previous month crosses the year boundary", func(t *testing.T) {
		cur := Resolve(Month, now)
		prev := Previous(Month, cur)
		if prev.Start.Year() != 2024 || prev.Start.Month() != time.December {
			t.Errorf("Previous(Month) start = %v, want December 2024", prev.Start)
		}
		if !prev.End.Before(cur.Start) {
			t.Errorf("Previous(Month) end %v should precede current start %v", prev.End, cur.Start)
		}
	})

	t.Run("previous week is the seven days before", func(t *testing.T) {
		cur := Resolve(Week, now)
		prev := Previous(Week, cur)
		if !prev.End.Equal(cur.Start) {
			t.Errorf("Previous(Week) end = %v, want %v", prev.End, cur.Start)
		}
		if got := prev.End.Sub(prev.Start); got != 7*24*time.Hour {
			t.Errorf("Previous(Week) length = %v, want 168h", got)
		}
	})

	t.Run("previous quarter", func(t *testing.T) {
		cur := Resolve(Quarter, time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC))
		prev := Previous(Quarter, cur)
		if prev.Start.Month() != time.January || prev.Start.Year() != 2025 {
			t.Errorf("Previous(Quarter) start = %v, want January 2025", prev.Start)
		}
	})
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
	}{
		{"week", Week},
		{"month", Month},
		{"quarter", Quarter},
		{"year", Year},
		{"", Month},
		{"decade", Month},
	}

	for _, tt := range tests {
		if got := ParsePeriod(tt.in); got != tt.want {
			t.Errorf("ParsePeriod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
