// Package export serializes the filtered event table to CSV for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jdalain/teq-dashboard/internal/domain"
)

// Filename is the download name offered for the CSV export.
const Filename = "earthquake_data.csv"

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

var header = []string{
	"event_id", "timestamp", "date_only", "gmt_time", "local_time",
	"latitude", "longitude", "depth", "magnitude", "magnitude_type",
	"location", "province", "country",
}

// WriteCSV writes one header row plus one row per event, UTF-8 encoded.
// Floats use the shortest representation that round-trips, so re-parsing
// the output recovers the same values. A missing magnitude becomes an
// empty cell.
func WriteCSV(w io.Writer, events []domain.QuakeEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range events {
		magnitude := ""
		if e.MagnitudeValid {
			magnitude = formatFloat(e.Magnitude)
		}
		row := []string{
			e.EventID,
			e.Timestamp.UTC().Format(timestampLayout),
			e.DateOnly.Format(dateLayout),
			e.GMTTime,
			e.LocalTime,
			formatFloat(e.Latitude),
			formatFloat(e.Longitude),
			formatFloat(e.Depth),
			magnitude,
			e.MagnitudeType,
			e.Location,
			e.Province,
			e.Country,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a CSV previously produced by WriteCSV back into events.
func ReadCSV(r io.Reader) ([]domain.QuakeEvent, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, &domain.ParseError{Reason: "csv body", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ParseError{Reason: "csv body: missing header"}
	}
	if len(rows[0]) != len(header) {
		return nil, &domain.ParseError{Reason: "csv header: unexpected column count"}
	}

	events := make([]domain.QuakeEvent, 0, len(rows)-1)
	for _, row := range rows[1:] {
		event, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func parseRow(row []string) (domain.QuakeEvent, error) {
	ts, err := time.ParseInLocation(timestampLayout, row[1], time.UTC)
	if err != nil {
		return domain.QuakeEvent{}, &domain.ParseError{Reason: "csv timestamp", Err: err}
	}
	day, err := time.ParseInLocation(dateLayout, row[2], time.UTC)
	if err != nil {
		return domain.QuakeEvent{}, &domain.ParseError{Reason: "csv date_only", Err: err}
	}

	lat, err := parseFloat("latitude", row[5])
	if err != nil {
		return domain.QuakeEvent{}, err
	}
	lon, err := parseFloat("longitude", row[6])
	if err != nil {
		return domain.QuakeEvent{}, err
	}
	depth, err := parseFloat("depth", row[7])
	if err != nil {
		return domain.QuakeEvent{}, err
	}

	event := domain.QuakeEvent{
		EventID:       row[0],
		Timestamp:     ts,
		DateOnly:      day,
		GMTTime:       row[3],
		LocalTime:     row[4],
		Latitude:      lat,
		Longitude:     lon,
		Depth:         depth,
		MagnitudeType: row[9],
		Location:      row[10],
		Province:      row[11],
		Country:       row[12],
	}
	if row[8] != "" {
		magnitude, err := parseFloat("magnitude", row[8])
		if err != nil {
			return domain.QuakeEvent{}, err
		}
		event.Magnitude = magnitude
		event.MagnitudeValid = true
	}
	return event, nil
}

func parseFloat(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &domain.CoercionError{Field: field, Value: value}
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
