package dashboard_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdalain/teq-dashboard/internal/dashboard"
	"github.com/jdalain/teq-dashboard/internal/domain"
	"github.com/jdalain/teq-dashboard/internal/observability"
)

// --- mocks ---

type mockFetcher struct {
	records   []domain.RawEventRecord
	err       error
	calls     int
	lastStart time.Time
	lastEnd   time.Time
}

func (m *mockFetcher) FetchWindow(_ context.Context, start, end time.Time) ([]domain.RawEventRecord, error) {
	m.calls++
	m.lastStart, m.lastEnd = start, end
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

type mockPublisher struct {
	published [][]domain.QuakeEvent
	err       error
}

func (m *mockPublisher) PublishEvents(_ context.Context, events []domain.QuakeEvent) error {
	m.published = append(m.published, events)
	return m.err
}

// --- fixtures ---

// testNow sits at noon the day after the main shock so the last two
// records fall inside the trailing 24-hour window.
var testNow = time.Date(2023, 2, 7, 12, 0, 0, 0, time.UTC)

func rawRecord(id, date, country, magnitude string) domain.RawEventRecord {
	return domain.RawEventRecord{
		EventID:   id,
		Date:      date,
		Country:   country,
		Province:  "Kahramanmaraş",
		Location:  "Pazarcık (Kahramanmaraş)",
		Latitude:  "37.288",
		Longitude: "37.043",
		Depth:     "8.6",
		Magnitude: magnitude,
		MagType:   "Mw",
	}
}

func testRecords() []domain.RawEventRecord {
	badLat := rawRecord("6", "2023-02-06T02:00:00", "Türkiye", "3.0")
	badLat.Latitude = "n/a"
	return []domain.RawEventRecord{
		rawRecord("1", "2023-02-06T01:17:32", "Türkiye", "7.7"),
		rawRecord("2", "2023-02-06T13:24:47", "Türkiye", "7.6"),
		rawRecord("3", "2023-02-07T11:00:00", "Türkiye", "4.0"),
		rawRecord("4", "2023-02-07T11:01:00", "Türkiye", "4.5"),
		rawRecord("5", "2023-02-06T05:00:00", "Suriye", "4.8"),
		badLat,
	}
}

func testParams() dashboard.Params {
	return dashboard.Params{
		Dates: domain.DateRange{
			Start: time.Date(2023, 2, 6, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, 2, 7, 0, 0, 0, 0, time.UTC),
		},
		Magnitudes: domain.MagnitudeRange{Min: 0.0, Max: 8.0},
	}
}

func newTestService(fetcher *mockFetcher, publisher dashboard.EventPublisher) (*dashboard.Service, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(testNow)
	svc := dashboard.NewService(
		fetcher,
		domain.NewNormalizer("Türkiye", 3*time.Hour),
		publisher,
		dashboard.NewCache(8, 5*time.Minute, clock),
		clock,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
	)
	return svc, clock
}

// --- tests ---

func TestService_Render_HappyPath(t *testing.T) {
	fetcher := &mockFetcher{records: testRecords()}
	svc, _ := newTestService(fetcher, nil)

	snap, err := svc.Render(context.Background(), testParams())
	require.NoError(t, err)

	assert.Equal(t, 4, snap.TotalCount)
	assert.Len(t, snap.Events, 4)
	assert.Equal(t, 1, snap.SkippedRows)

	// Filtered table stays in timestamp order.
	for i := 1; i < len(snap.Events); i++ {
		assert.True(t, snap.Events[i-1].Timestamp.Before(snap.Events[i].Timestamp))
	}

	require.Len(t, snap.Top, 4)
	assert.Equal(t, 7.7, snap.Top[0].Magnitude)
	assert.Equal(t, 7.6, snap.Top[1].Magnitude)

	require.Len(t, snap.DailyMax, 2)
	assert.Equal(t, 7.7, snap.DailyMax[0].MaxMagnitude)
	assert.Equal(t, 4.5, snap.DailyMax[1].MaxMagnitude)

	assert.Len(t, snap.Histogram, 4)
	assert.True(t, snap.GapAverage24hOK)
	assert.Equal(t, testNow, snap.GeneratedAt)
}

func TestService_Render_WidensDateBounds(t *testing.T) {
	fetcher := &mockFetcher{records: testRecords()}
	svc, _ := newTestService(fetcher, nil)

	_, err := svc.Render(context.Background(), testParams())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2023, 2, 6, 0, 0, 0, 0, time.UTC), fetcher.lastStart)
	assert.Equal(t, time.Date(2023, 2, 7, 23, 59, 59, 999999999, time.UTC), fetcher.lastEnd)
}

func TestService_Render_DropsRowsOutsideDateWindow(t *testing.T) {
	records := testRecords()
	records = append(records,
		rawRecord("7", "2023-02-09T08:00:00", "Türkiye", "5.5"),
		rawRecord("8", "2023-02-05T23:59:59", "Türkiye", "6.0"),
	)
	fetcher := &mockFetcher{records: records}
	svc, _ := newTestService(fetcher, nil)

	snap, err := svc.Render(context.Background(), testParams())
	require.NoError(t, err)

	// A misbehaving upstream returning rows beyond the query bounds must
	// not leak them into the table.
	assert.Equal(t, 4, snap.TotalCount)
	for _, e := range snap.Events {
		assert.True(t, testParams().Dates.Contains(e.DateOnly), "event %s is outside the requested window", e.EventID)
	}
}

func TestService_Render_MagnitudeFilter(t *testing.T) {
	fetcher := &mockFetcher{records: testRecords()}
	svc, _ := newTestService(fetcher, nil)

	p := testParams()
	p.Magnitudes = domain.MagnitudeRange{Min: 4.0, Max: 5.0}

	snap, err := svc.Render(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.TotalCount)
	require.True(t, snap.GapAverage24hOK)
	assert.Equal(t, 1.0, snap.GapAverage24h, "two events one minute apart")
}

func TestService_Render_MemoizesByDateWindow(t *testing.T) {
	fetcher := &mockFetcher{records: testRecords()}
	publisher := &mockPublisher{}
	svc, _ := newTestService(fetcher, publisher)

	_, err := svc.Render(context.Background(), testParams())
	require.NoError(t, err)
	_, err = svc.Render(context.Background(), testParams())
	require.NoError(t, err)

	// Same dates, different magnitudes: still the same fetch window.
	p := testParams()
	p.Magnitudes = domain.MagnitudeRange{Min: 4.0, Max: 5.0}
	_, err = svc.Render(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
	assert.Len(t, publisher.published, 1, "only fresh fetches are published")

	// A different date window is a different key.
	p = testParams()
	p.Dates.End = time.Date(2023, 2, 8, 0, 0, 0, 0, time.UTC)
	_, err = svc.Render(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.calls)
}

func TestService_Render_RefetchesAfterTTL(t *testing.T) {
	fetcher := &mockFetcher{records: testRecords()}
	svc, clock := newTestService(fetcher, nil)

	_, err := svc.Render(context.Background(), testParams())
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)

	_, err = svc.Render(context.Background(), testParams())
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.calls)
}

func TestService_Render_FetchErrorAborts(t *testing.T) {
	fetchErr := &domain.FetchError{URL: "https://example.invalid", Status: 503}
	fetcher := &mockFetcher{err: fetchErr}
	svc, _ := newTestService(fetcher, nil)

	_, err := svc.Render(context.Background(), testParams())

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Error(t, svc.CheckReadiness(context.Background()), "failed render must not mark the service ready")
}

func TestService_Render_EmptyResultIsNotAnError(t *testing.T) {
	fetcher := &mockFetcher{records: nil}
	svc, _ := newTestService(fetcher, nil)

	snap, err := svc.Render(context.Background(), testParams())
	require.NoError(t, err)

	assert.Zero(t, snap.TotalCount)
	assert.Empty(t, snap.Events)
	assert.False(t, snap.GapAverage24hOK)
	assert.Empty(t, snap.Top)
	assert.Empty(t, snap.Histogram)
}

func TestService_Render_PublisherFailureDoesNotAbort(t *testing.T) {
	fetcher := &mockFetcher{records: testRecords()}
	publisher := &mockPublisher{err: errors.New("broker unreachable")}
	svc, _ := newTestService(fetcher, publisher)

	snap, err := svc.Render(context.Background(), testParams())

	require.NoError(t, err)
	assert.Equal(t, 4, snap.TotalCount)
}

func TestService_CheckReadiness(t *testing.T) {
	fetcher := &mockFetcher{records: testRecords()}
	svc, _ := newTestService(fetcher, nil)

	assert.Error(t, svc.CheckReadiness(context.Background()))

	_, err := svc.Render(context.Background(), testParams())
	require.NoError(t, err)

	assert.NoError(t, svc.CheckReadiness(context.Background()))
}
