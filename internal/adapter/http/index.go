package http

import (
	"fmt"
	"html/template"
	"time"

	"github.com/jdalain/teq-dashboard/internal/dashboard"
	"github.com/jdalain/teq-dashboard/internal/domain"
)

// indexView is the pre-formatted data handed to the summary page template.
type indexView struct {
	GeneratedAt   string
	StartDate     string
	EndDate       string
	MagnitudeMin  float64
	MagnitudeMax  float64
	TotalCount    int
	GapAverage24h string
	SkippedRows   int
	Top           []domain.QuakeEvent
}

func newIndexView(snap dashboard.Snapshot) indexView {
	gap := "no data"
	if snap.GapAverage24hOK {
		gap = fmt.Sprintf("%.1f min", snap.GapAverage24h)
	}
	return indexView{
		GeneratedAt:   snap.GeneratedAt.UTC().Format(time.RFC3339),
		StartDate:     snap.Params.Dates.Start.Format(dateParamLayout),
		EndDate:       snap.Params.Dates.End.Format(dateParamLayout),
		MagnitudeMin:  snap.Params.Magnitudes.Min,
		MagnitudeMax:  snap.Params.Magnitudes.Max,
		TotalCount:    snap.TotalCount,
		GapAverage24h: gap,
		SkippedRows:   snap.SkippedRows,
		Top:           snap.Top,
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Türkiye Earthquakes Dashboard</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.7rem; text-align: left; }
.metric { display: inline-block; margin-right: 2rem; }
.metric b { font-size: 1.6rem; display: block; }
footer { margin-top: 2rem; font-size: 0.85rem; color: #666; }
</style>
</head>
<body>
<h1>Türkiye Earthquakes Dashboard</h1>
<p>{{.StartDate}} → {{.EndDate}}, magnitude {{.MagnitudeMin}}–{{.MagnitudeMax}}</p>

<div class="metric"><b>{{.TotalCount}}</b>total earthquakes</div>
<div class="metric"><b>{{.GapAverage24h}}</b>average gap, last 24h</div>
{{if .SkippedRows}}<div class="metric"><b>{{.SkippedRows}}</b>unusable upstream rows</div>{{end}}

<h2>10 Strongest Earthquakes</h2>
<table>
<tr><th>Date</th><th>Time (GMT)</th><th>Magnitude</th><th>Depth (km)</th><th>Location</th></tr>
{{range .Top}}
<tr><td>{{.DateOnly.Format "2006-01-02"}}</td><td>{{.GMTTime}}</td><td>{{printf "%.1f" .Magnitude}}</td><td>{{printf "%.1f" .Depth}}</td><td>{{.Location}}</td></tr>
{{end}}
</table>

<p><a href="/api/dashboard">Full snapshot (JSON)</a> ·
<a href="/api/export.csv">Download data as CSV</a></p>

<footer>Data source: <a href="https://deprem.afad.gov.tr/home-page">AFAD</a>.
Generated {{.GeneratedAt}}.</footer>
</body>
</html>
`))
