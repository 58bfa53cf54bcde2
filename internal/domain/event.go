package domain

import "time"

// RawEventRecord mirrors one element of the AFAD event/filter JSON array.
// The API emits every value as a string, including coordinates and
// magnitude, so numeric coercion happens during normalization.
type RawEventRecord struct {
	EventID   string `json:"eventID"`
	Date      string `json:"date"`
	Country   string `json:"country"`
	Province  string `json:"province"`
	Location  string `json:"location"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Depth     string `json:"depth"`
	Magnitude string `json:"magnitude"`
	MagType   string `json:"type"` // magnitude scale, e.g. "ML", "Mw"
}

// QuakeEvent is the normalized representation after country filtering,
// timestamp parsing, and numeric coercion. Events are ordered by Timestamp.
type QuakeEvent struct {
	EventID   string    `json:"event_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	DateOnly  time.Time `json:"date_only"`
	GMTTime   string    `json:"gmt_time"`
	LocalTime string    `json:"local_time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Depth     float64   `json:"depth,omitempty"`

	// Magnitude is only meaningful when MagnitudeValid is true. Records with
	// a non-coercible magnitude survive normalization and are dropped at the
	// first stage that requires a numeric magnitude.
	Magnitude      float64 `json:"magnitude"`
	MagnitudeValid bool    `json:"-"`
	MagnitudeType  string  `json:"magnitude_type,omitempty"`

	Location string `json:"location,omitempty"`
	Province string `json:"province,omitempty"`
	Country  string `json:"country,omitempty"`
}

// SkippedRow records one raw record rejected during normalization and why.
type SkippedRow struct {
	Index   int
	EventID string
	Reason  error
}

// NormalizedSet is the result of normalizing a raw fetch: the retained
// events in timestamp order plus the rows that failed coercion or parsing.
type NormalizedSet struct {
	Events  []QuakeEvent
	Skipped []SkippedRow
}
