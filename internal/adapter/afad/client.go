// Package afad is the outbound HTTP adapter for the AFAD event/filter API.
package afad

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jdalain/teq-dashboard/internal/domain"
	"github.com/jdalain/teq-dashboard/internal/observability"
)

// queryTimeLayout is the timestamp format the AFAD filter endpoint expects
// for its start/end query parameters.
const queryTimeLayout = "2006-01-02 15:04:05"

// Client fetches earthquake events from the AFAD event/filter API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an AFAD API client with an explicit request timeout.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchWindow issues one GET with both bounds formatted as
// "YYYY-MM-DD HH:MM:SS" query parameters and decodes the JSON array of raw
// records. A transport error or non-2xx status yields a *domain.FetchError;
// a body that is not the expected JSON shape yields a *domain.ParseError.
func (c *Client) FetchWindow(ctx context.Context, start, end time.Time) ([]domain.RawEventRecord, error) {
	params := url.Values{
		"start": {start.UTC().Format(queryTimeLayout)},
		"end":   {end.UTC().Format(queryTimeLayout)},
	}
	fullURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: fullURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	began := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.Observe(time.Since(began).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return nil, &domain.FetchError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		c.logger.Warn("afad API returned non-success status",
			"status", resp.StatusCode,
			"start", params.Get("start"),
			"end", params.Get("end"),
		)
		return nil, &domain.FetchError{URL: fullURL, Status: resp.StatusCode}
	}

	var records []domain.RawEventRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return nil, &domain.ParseError{Reason: "event response body", Err: err}
	}

	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	c.logger.Debug("fetched events",
		"count", len(records),
		"start", params.Get("start"),
		"end", params.Get("end"),
	)
	return records, nil
}
