package domain

import "time"

// MagnitudeRange is an inclusive [Min, Max] magnitude filter.
type MagnitudeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether m lies within the closed interval.
func (r MagnitudeRange) Contains(m float64) bool {
	return m >= r.Min && m <= r.Max
}

// FilterByMagnitude returns a new slice with the events whose magnitude
// lies within r. Events without a valid numeric magnitude are dropped here,
// the first stage that requires one. The input is not mutated, so
// re-filtering an already-filtered slice with the same bounds is a no-op.
func FilterByMagnitude(events []QuakeEvent, r MagnitudeRange) []QuakeEvent {
	filtered := make([]QuakeEvent, 0, len(events))
	for _, e := range events {
		if !e.MagnitudeValid {
			continue
		}
		if r.Contains(e.Magnitude) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// DateRange is an inclusive calendar-day interval. Start and End carry only
// their date component; any time-of-day portion is ignored by Widen.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Widen expands the date-only bounds to a full-day timestamp window:
// 00:00:00 on the start day through 23:59:59.999999999 on the end day.
// The upstream API query takes these widened bounds, which is how the date
// filter is applied before fetch rather than as a row predicate.
func (r DateRange) Widen() (time.Time, time.Time) {
	start := midnight(r.Start)
	end := midnight(r.End).Add(24*time.Hour - time.Nanosecond)
	return start, end
}

// Contains reports whether day (compared by calendar date, UTC) lies
// within the range.
func (r DateRange) Contains(day time.Time) bool {
	d := midnight(day)
	return !d.Before(midnight(r.Start)) && !d.After(midnight(r.End))
}

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
