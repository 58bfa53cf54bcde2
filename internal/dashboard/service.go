// Package dashboard orchestrates one fetch-normalize-filter-aggregate pass
// per caller request and memoizes the fetch-dependent half of that work.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jdalain/teq-dashboard/internal/domain"
	"github.com/jdalain/teq-dashboard/internal/observability"
	"github.com/jdalain/teq-dashboard/internal/stats"
)

const (
	topEventCount = 10
	gapWindow     = 24 * time.Hour

	cacheKeyLayout = "2006-01-02 15:04:05"
)

// Fetcher retrieves raw event records for a timestamp window.
type Fetcher interface {
	FetchWindow(ctx context.Context, start, end time.Time) ([]domain.RawEventRecord, error)
}

// EventPublisher forwards freshly fetched normalized events to a sink.
type EventPublisher interface {
	PublishEvents(ctx context.Context, events []domain.QuakeEvent) error
}

// Params are the two caller-adjustable range filters: the date range is
// applied upstream as query bounds, the magnitude range as a row predicate
// after fetch.
type Params struct {
	Dates      domain.DateRange      `json:"dates"`
	Magnitudes domain.MagnitudeRange `json:"magnitudes"`
}

// Snapshot is one complete render of the dashboard data: the filtered
// table plus every derived aggregate.
type Snapshot struct {
	Params      Params    `json:"params"`
	GeneratedAt time.Time `json:"generated_at"`

	Events     []domain.QuakeEvent `json:"events"`
	TotalCount int                 `json:"total_count"`

	DailyGapAverages []stats.DailyGap        `json:"daily_gap_averages"`
	GapAverage24h    float64                 `json:"gap_average_24h_minutes"`
	GapAverage24hOK  bool                    `json:"gap_average_24h_has_data"`
	DailyMax         []stats.DailyMax        `json:"daily_max_magnitude"`
	Histogram        []stats.MagnitudeBucket `json:"magnitude_histogram"`
	Top              []domain.QuakeEvent     `json:"top_magnitude"`

	// SkippedRows counts raw records dropped for unparseable timestamps or
	// non-numeric coordinates, surfaced so bad upstream data is visible.
	SkippedRows int `json:"skipped_rows"`
}

// Service renders dashboard snapshots. Every parameter change re-runs the
// full filter and aggregation over the normalized table; only the fetch
// plus normalization is memoized, keyed by the widened date window.
type Service struct {
	fetcher    Fetcher
	normalizer *domain.Normalizer
	publisher  EventPublisher // nil when the event sink is disabled
	cache      *Cache
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
}

// NewService creates a dashboard Service. publisher may be nil.
func NewService(
	fetcher Fetcher,
	normalizer *domain.Normalizer,
	publisher EventPublisher,
	cache *Cache,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Service {
	return &Service{
		fetcher:    fetcher,
		normalizer: normalizer,
		publisher:  publisher,
		cache:      cache,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once at least one render has succeeded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no dashboard render has succeeded yet")
	}
	return nil
}

// Render produces a Snapshot for the given parameters. Fetch, parse, and
// coercion failures abort the pass; an empty filtered result does not, and
// every aggregate degrades to its zero value or "no data" instead.
func (s *Service) Render(ctx context.Context, p Params) (Snapshot, error) {
	began := time.Now()

	set, err := s.normalizedEvents(ctx, p.Dates)
	if err != nil {
		s.metrics.RendersTotal.WithLabelValues("error").Inc()
		return Snapshot{}, err
	}

	filtered := domain.FilterByMagnitude(set.Events, p.Magnitudes)
	gap24, gap24OK := stats.WindowGapAverage(filtered, s.clock.Now(), gapWindow)

	snap := Snapshot{
		Params:      p,
		GeneratedAt: s.clock.Now(),

		Events:     filtered,
		TotalCount: stats.TotalCount(filtered),

		DailyGapAverages: stats.DailyGapAverages(filtered),
		GapAverage24h:    gap24,
		GapAverage24hOK:  gap24OK,
		DailyMax:         stats.DailyMaxMagnitude(filtered),
		Histogram:        stats.MagnitudeHistogram(filtered),
		Top:              stats.TopByMagnitude(filtered, topEventCount),

		SkippedRows: len(set.Skipped),
	}

	if snap.TotalCount == 0 {
		s.logger.Warn("selected ranges matched no events",
			"start", p.Dates.Start.Format("2006-01-02"),
			"end", p.Dates.End.Format("2006-01-02"),
			"min_mag", p.Magnitudes.Min,
			"max_mag", p.Magnitudes.Max,
		)
		s.metrics.RendersTotal.WithLabelValues("empty").Inc()
	} else {
		s.metrics.RendersTotal.WithLabelValues("success").Inc()
	}
	s.metrics.RenderDuration.Observe(time.Since(began).Seconds())
	s.ready.Store(true)
	return snap, nil
}

// normalizedEvents returns the normalized table for the widened date
// window, fetching only on a cache miss. Fresh fetches are forwarded to
// the event publisher when one is configured.
func (s *Service) normalizedEvents(ctx context.Context, dates domain.DateRange) (domain.NormalizedSet, error) {
	start, end := dates.Widen()
	key := start.UTC().Format(cacheKeyLayout) + "|" + end.UTC().Format(cacheKeyLayout)

	if set, ok := s.cache.get(key); ok {
		s.metrics.RenderCache.WithLabelValues("hit").Inc()
		return set, nil
	}
	s.metrics.RenderCache.WithLabelValues("miss").Inc()

	raws, err := s.fetcher.FetchWindow(ctx, start, end)
	if err != nil {
		return domain.NormalizedSet{}, err
	}

	set := s.normalizer.Normalize(raws)
	set.Events = clampToDates(set.Events, dates)
	s.metrics.RowsNormalized.Add(float64(len(set.Events)))
	if len(set.Skipped) > 0 {
		s.metrics.RowsSkipped.Add(float64(len(set.Skipped)))
		for _, row := range set.Skipped {
			s.logger.Warn("skipping unusable record",
				"index", row.Index,
				"event_id", row.EventID,
				"error", row.Reason,
			)
		}
	}

	s.cache.put(key, set)
	s.publish(ctx, set.Events)
	return set, nil
}

// clampToDates drops rows outside the requested calendar-day window. The
// upstream query carries the same bounds, but rows it returns anyway must
// not leak into the table.
func clampToDates(events []domain.QuakeEvent, dates domain.DateRange) []domain.QuakeEvent {
	kept := make([]domain.QuakeEvent, 0, len(events))
	for _, e := range events {
		if dates.Contains(e.DateOnly) {
			kept = append(kept, e)
		}
	}
	return kept
}

// publish forwards events to the sink. Publish failures are logged, not
// propagated: the sink is an optional side channel and must never break a
// render.
func (s *Service) publish(ctx context.Context, events []domain.QuakeEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.PublishEvents(ctx, events); err != nil {
		s.logger.Error("publishing events failed", "error", err, "count", len(events))
	}
}
