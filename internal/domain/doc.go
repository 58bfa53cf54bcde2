// Package domain models AFAD earthquake event data.
//
// # Data Source
//
// Events come from the AFAD (Disaster and Emergency Management Authority of
// Türkiye) public event/filter API at https://deprem.afad.gov.tr. A query
// with start/end bounds returns a JSON array of flat objects in which every
// value, including coordinates and magnitude, is a string.
//
// # AFAD Data Conventions
//
// Timestamps:
//
//	"2006-01-02T15:04:05" with no zone designator, reported in GMT.
//	Local wall-clock time in Türkiye is a fixed +3 hour shift (the country
//	stopped observing DST in 2016), applied during normalization with a
//	configurable offset.
//
// Country:
//
//	Free text. Filtering matches the literal "Türkiye" spelling exactly,
//	diacritics included; the API also returns events for neighboring
//	countries inside the queried bounding window.
//
// Magnitude:
//
//	Decimal string, e.g. "4.5", with the scale in the separate "type"
//	column ("ML", "Mw", "Md"). Occasionally blank or non-numeric for
//	fresh events still being reviewed. Such records are retained through
//	normalization and dropped only by stages that need a numeric value
//	(magnitude filtering, aggregation, ranking).
//
// Coordinates and depth:
//
//	Decimal-degree strings (WGS-84) and depth in kilometers. A record with
//	non-numeric coordinates is unusable for the map and is skipped during
//	normalization; a bad depth degrades to zero.
package domain
