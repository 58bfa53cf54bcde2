// Command quakegen generates AFAD-shaped mock data fixtures. It runs the
// synthetic records through the actual domain normalizer so the CSV output
// matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/quakegen \
//	  -raw-out data/mock/quakes_raw.json \
//	  -csv-out data/mock/quakes_normalized.csv \
//	  -count 500 -start 2023-02-06 -days 14 -seed 1
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/jdalain/teq-dashboard/internal/domain"
	"github.com/jdalain/teq-dashboard/internal/export"
)

var provinces = []string{
	"Kahramanmaraş", "Hatay", "Gaziantep", "Malatya", "Adıyaman",
	"Adana", "Osmaniye", "Diyarbakır", "Şanlıurfa", "Kilis",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rawOut := flag.String("raw-out", "", "output path for the raw JSON fixture")
	csvOut := flag.String("csv-out", "", "output path for the normalized CSV fixture")
	count := flag.Int("count", 500, "number of records to generate")
	startStr := flag.String("start", "2023-02-06", "first event date (YYYY-MM-DD)")
	days := flag.Int("days", 14, "number of days to spread events over")
	seed := flag.Int64("seed", 1, "random seed, fixed for reproducible fixtures")
	flag.Parse()

	if *rawOut == "" || *csvOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -csv-out")
	}

	start, err := time.ParseInLocation("2006-01-02", *startStr, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	records := generate(rand.New(rand.NewSource(*seed)), start, *days, *count)
	log.Printf("generated %d raw records", len(records))

	if err := writeJSON(*rawOut, records); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	normalizer := domain.NewNormalizer("Türkiye", 3*time.Hour)
	set := normalizer.Normalize(records)
	log.Printf("normalized: %d kept, %d skipped", len(set.Events), len(set.Skipped))

	f, err := os.Create(*csvOut)
	if err != nil {
		return fmt.Errorf("creating CSV fixture: %w", err)
	}
	defer f.Close()
	if err := export.WriteCSV(f, set.Events); err != nil {
		return fmt.Errorf("writing CSV fixture: %w", err)
	}
	log.Printf("wrote CSV fixture: %s", *csvOut)
	return nil
}

// generate produces records resembling the AFAD feed: mostly Türkiye rows
// in the southeastern seismic zone, a few neighboring-country rows, and
// the occasional blank magnitude for a not-yet-reviewed event.
func generate(rng *rand.Rand, start time.Time, days, count int) []domain.RawEventRecord {
	records := make([]domain.RawEventRecord, 0, count)
	window := time.Duration(days) * 24 * time.Hour

	for i := 0; i < count; i++ {
		ts := start.Add(time.Duration(rng.Int63n(int64(window))))
		country := "Türkiye"
		province := provinces[rng.Intn(len(provinces))]
		if rng.Float64() < 0.05 {
			country = "Suriye"
			province = ""
		}

		magnitude := fmt.Sprintf("%.1f", 1.0+rng.Float64()*6.5)
		if rng.Float64() < 0.02 {
			magnitude = ""
		}

		records = append(records, domain.RawEventRecord{
			EventID:   fmt.Sprintf("%d", 500000+i),
			Date:      ts.Format("2006-01-02T15:04:05"),
			Country:   country,
			Province:  province,
			Location:  fmt.Sprintf("%s (%s)", province, country),
			Latitude:  fmt.Sprintf("%.4f", 36.0+rng.Float64()*3.0),
			Longitude: fmt.Sprintf("%.4f", 36.0+rng.Float64()*4.0),
			Depth:     fmt.Sprintf("%.1f", 2.0+rng.Float64()*20.0),
			Magnitude: magnitude,
			MagType:   "ML",
		})
	}
	return records
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
