package afad

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdalain/teq-dashboard/internal/domain"
	"github.com/jdalain/teq-dashboard/internal/observability"
)

var (
	testStart = time.Date(2023, 2, 6, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2023, 2, 8, 23, 59, 59, 999999999, time.UTC)
)

func testClient(baseURL string) *Client {
	return NewClient(
		baseURL,
		5*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestClient_FetchWindow_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2023-02-06 00:00:00", r.URL.Query().Get("start"))
		assert.Equal(t, "2023-02-08 23:59:59", r.URL.Query().Get("end"))

		records := []domain.RawEventRecord{
			{
				EventID:   "534812",
				Date:      "2023-02-06T01:17:32",
				Country:   "Türkiye",
				Province:  "Kahramanmaraş",
				Location:  "Pazarcık (Kahramanmaraş)",
				Latitude:  "37.288",
				Longitude: "37.043",
				Depth:     "8.6",
				Magnitude: "7.7",
				MagType:   "Mw",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(records))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	records, err := c.FetchWindow(context.Background(), testStart, testEnd)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "534812", records[0].EventID)
	assert.Equal(t, "Türkiye", records[0].Country)
	assert.Equal(t, "7.7", records[0].Magnitude)
}

func TestClient_FetchWindow_EmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	records, err := c.FetchWindow(context.Background(), testStart, testEnd)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_FetchWindow_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchWindow(context.Background(), testStart, testEnd)

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.Status)
}

func TestClient_FetchWindow_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchWindow(context.Background(), testStart, testEnd)

	var parseErr *domain.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestClient_FetchWindow_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // immediate close forces a connection error

	c := testClient(srv.URL)
	_, err := c.FetchWindow(context.Background(), testStart, testEnd)

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.Status)
}

func TestClient_FetchWindow_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(srv.URL)
	_, err := c.FetchWindow(ctx, testStart, testEnd)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
