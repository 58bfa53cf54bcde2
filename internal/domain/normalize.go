package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts lists the date formats observed in AFAD responses. The
// API has no zone designator; timestamps are taken as UTC.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

const timeOfDayLayout = "15:04:05"

// Normalizer converts raw API records into QuakeEvents for one country.
// localOffset is the fixed shift applied to derive wall-clock local time
// (AFAD reports in GMT; Türkiye is UTC+3).
type Normalizer struct {
	country     string
	localOffset time.Duration
}

// NewNormalizer creates a Normalizer that retains only records whose
// country field exactly matches country (diacritic-sensitive).
func NewNormalizer(country string, localOffset time.Duration) *Normalizer {
	return &Normalizer{country: country, localOffset: localOffset}
}

// Normalize filters raws to the target country, parses timestamps, derives
// the date-only and time-of-day columns, and coerces coordinates. Rows with
// an unparseable timestamp or non-numeric coordinates are reported in
// Skipped rather than aborting the whole set. The input is never mutated;
// the returned events are sorted ascending by timestamp (stable).
func (n *Normalizer) Normalize(raws []RawEventRecord) NormalizedSet {
	var set NormalizedSet
	for i, raw := range raws {
		if raw.Country != n.country {
			continue
		}
		event, err := n.normalizeRecord(raw)
		if err != nil {
			set.Skipped = append(set.Skipped, SkippedRow{
				Index:   i,
				EventID: raw.EventID,
				Reason:  err,
			})
			continue
		}
		set.Events = append(set.Events, event)
	}

	sort.SliceStable(set.Events, func(i, j int) bool {
		return set.Events[i].Timestamp.Before(set.Events[j].Timestamp)
	})
	return set
}

func (n *Normalizer) normalizeRecord(raw RawEventRecord) (QuakeEvent, error) {
	ts, err := parseTimestamp(raw.Date)
	if err != nil {
		return QuakeEvent{}, err
	}
	lat, err := coerceFloat("latitude", raw.Latitude)
	if err != nil {
		return QuakeEvent{}, err
	}
	lon, err := coerceFloat("longitude", raw.Longitude)
	if err != nil {
		return QuakeEvent{}, err
	}

	// Depth is informational only; a bad value degrades to zero.
	depth, _ := strconv.ParseFloat(strings.TrimSpace(raw.Depth), 64)

	// Magnitude is kept as-is here; stages that need a numeric magnitude
	// check MagnitudeValid and drop the row there.
	magnitude, magErr := coerceFloat("magnitude", raw.Magnitude)

	return QuakeEvent{
		EventID:        raw.EventID,
		Timestamp:      ts,
		DateOnly:       ts.Truncate(24 * time.Hour),
		GMTTime:        ts.Format(timeOfDayLayout),
		LocalTime:      ts.Add(n.localOffset).Format(timeOfDayLayout),
		Latitude:       lat,
		Longitude:      lon,
		Depth:          depth,
		Magnitude:      magnitude,
		MagnitudeValid: magErr == nil,
		MagnitudeType:  raw.MagType,
		Location:       raw.Location,
		Province:       raw.Province,
		Country:        raw.Country,
	}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, &ParseError{Reason: "date " + strconv.Quote(value)}
}

func coerceFloat(field, value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, &CoercionError{Field: field, Value: value}
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &CoercionError{Field: field, Value: value}
	}
	return v, nil
}
