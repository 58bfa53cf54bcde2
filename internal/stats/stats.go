// Package stats computes the derived dashboard aggregates. All functions
// are pure: they copy before sorting and never mutate their input.
package stats

import (
	"sort"
	"time"

	"github.com/jdalain/teq-dashboard/internal/domain"
)

// TotalCount returns the exact row count of the filtered table.
func TotalCount(events []domain.QuakeEvent) int {
	return len(events)
}

// DailyGap is the average gap between consecutive events attributed to one
// calendar day, in minutes.
type DailyGap struct {
	Day           time.Time `json:"day"`
	AvgGapMinutes float64   `json:"avg_gap_minutes"`
}

// DailyGapAverages orders events by their date-only column, takes the
// day-level difference in minutes between each row and its predecessor,
// and averages those differences per day. The first row has no predecessor
// and contributes nothing. Needs at least two rows to produce output.
func DailyGapAverages(events []domain.QuakeEvent) []DailyGap {
	if len(events) < 2 {
		return nil
	}

	ordered := make([]domain.QuakeEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DateOnly.Before(ordered[j].DateOnly)
	})

	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	var days []time.Time
	for i := 1; i < len(ordered); i++ {
		day := ordered[i].DateOnly
		gap := ordered[i].DateOnly.Sub(ordered[i-1].DateOnly).Minutes()
		if _, seen := counts[day]; !seen {
			days = append(days, day)
		}
		sums[day] += gap
		counts[day]++
	}

	result := make([]DailyGap, 0, len(days))
	for _, day := range days {
		result = append(result, DailyGap{
			Day:           day,
			AvgGapMinutes: sums[day] / float64(counts[day]),
		})
	}
	return result
}

// WindowGapAverage restricts events to those whose timestamp falls within
// the trailing window ending at now, orders them by timestamp, and returns
// the mean gap between consecutive events in minutes. The second return is
// false when the window holds fewer than two events, so callers render
// "no data" instead of propagating an undefined average.
func WindowGapAverage(events []domain.QuakeEvent, now time.Time, window time.Duration) (float64, bool) {
	cutoff := now.Add(-window)
	inWindow := make([]domain.QuakeEvent, 0, len(events))
	for _, e := range events {
		if !e.Timestamp.Before(cutoff) {
			inWindow = append(inWindow, e)
		}
	}
	if len(inWindow) < 2 {
		return 0, false
	}

	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].Timestamp.Before(inWindow[j].Timestamp)
	})

	var total float64
	for i := 1; i < len(inWindow); i++ {
		total += inWindow[i].Timestamp.Sub(inWindow[i-1].Timestamp).Minutes()
	}
	return total / float64(len(inWindow)-1), true
}

// DailyMax is the strongest magnitude observed on one calendar day.
type DailyMax struct {
	Day          time.Time `json:"day"`
	MaxMagnitude float64   `json:"max_magnitude"`
}

// DailyMaxMagnitude groups events by calendar day and takes the maximum
// magnitude per day, ascending by day. Rows without a valid magnitude are
// dropped here.
func DailyMaxMagnitude(events []domain.QuakeEvent) []DailyMax {
	maxima := make(map[time.Time]float64)
	for _, e := range events {
		if !e.MagnitudeValid {
			continue
		}
		if current, ok := maxima[e.DateOnly]; !ok || e.Magnitude > current {
			maxima[e.DateOnly] = e.Magnitude
		}
	}

	result := make([]DailyMax, 0, len(maxima))
	for day, m := range maxima {
		result = append(result, DailyMax{Day: day, MaxMagnitude: m})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Day.Before(result[j].Day)
	})
	return result
}

// MagnitudeBucket is the event count for one distinct magnitude value.
type MagnitudeBucket struct {
	Magnitude float64 `json:"magnitude"`
	Count     int     `json:"count"`
}

// MagnitudeHistogram counts events per distinct magnitude value, ascending
// by magnitude. Rows without a valid magnitude are dropped here.
func MagnitudeHistogram(events []domain.QuakeEvent) []MagnitudeBucket {
	counts := make(map[float64]int)
	for _, e := range events {
		if e.MagnitudeValid {
			counts[e.Magnitude]++
		}
	}

	result := make([]MagnitudeBucket, 0, len(counts))
	for m, c := range counts {
		result = append(result, MagnitudeBucket{Magnitude: m, Count: c})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Magnitude < result[j].Magnitude
	})
	return result
}

// TopByMagnitude returns the n strongest events in descending magnitude
// order, ties broken by original table order (stable sort). The result has
// length min(n, valid rows) and is a copy.
func TopByMagnitude(events []domain.QuakeEvent, n int) []domain.QuakeEvent {
	valid := make([]domain.QuakeEvent, 0, len(events))
	for _, e := range events {
		if e.MagnitudeValid {
			valid = append(valid, e)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Magnitude > valid[j].Magnitude
	})
	if n > len(valid) {
		n = len(valid)
	}
	return valid[:n]
}
