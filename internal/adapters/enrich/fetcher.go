// Package enrich fetches live profile metrics from an external service.
// The fetch is an optional enrichment: it is cancellable, retried with
// backoff, and falls back to "metric unavailable". It is never a hard
// dependency of the aggregation pipeline.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/logger"
	"github.com/okian/persona/pkg/metrics"
)

// Default fetcher configuration constants.
const (
	defaultTimeout = 2 * time.Second
	defaultRetries = 2
	defaultBackoff = 200 * time.Millisecond
)

// Fetcher retrieves live metrics for a profile.
type Fetcher interface {
	// Fetch returns the live metrics, honoring ctx for cancellation.
	Fetch(ctx context.Context, profileID string) (model.LiveMetrics, error)
}

// Disabled is the no-op Fetcher used when enrichment is switched off.
type Disabled struct{}

// Fetch always reports the branch as disabled.
func (Disabled) Fetch(ctx context.Context, profileID string) (model.LiveMetrics, error) {
	metrics.RecordEnrichFetch("disabled")
	return model.LiveMetrics{}, ErrDisabled
}

// Option applies a configuration option to the HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithRetries sets how many times a failed attempt is retried.
func WithRetries(n int) Option {
	return func(f *HTTPFetcher) {
		if n >= 0 {
			f.retries = n
		}
	}
}

// WithBackoff sets the delay between attempts.
func WithBackoff(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.backoff = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// HTTPFetcher implements Fetcher against a profile-metrics HTTP endpoint.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	retries int
	backoff time.Duration
	log     logger.Logger
}

// wireMetrics mirrors the endpoint's response body.
type wireMetrics struct {
	Followers      int64   `json:"followers"`
	EngagementRate float64 `json:"engagement_rate"`
}

// NewHTTPFetcher creates a fetcher for the given base URL.
func NewHTTPFetcher(baseURL string, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		baseURL: baseURL,
		client:  &http.Client{},
		timeout: defaultTimeout,
		retries: defaultRetries,
		backoff: defaultBackoff,
		log:     logger.Get().Named("enrich"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves live metrics with bounded retries. Any terminal failure is
// wrapped in ErrUnavailable so callers can fall back to "metric unavailable".
func (f *HTTPFetcher) Fetch(ctx context.Context, profileID string) (model.LiveMetrics, error) {
	start := time.Now()
	defer func() {
		metrics.RecordEnrichLatency(float64(time.Since(start).Milliseconds()))
	}()

	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				metrics.RecordEnrichFetch("timeout")
				return model.LiveMetrics{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(f.backoff):
			}
		}

		m, err := f.attempt(ctx, profileID)
		if err == nil {
			metrics.RecordEnrichFetch("ok")
			return m, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		f.log.Warn(ctx, "live metrics attempt failed",
			logger.String("profile_id", profileID),
			logger.Int("attempt", attempt+1),
			logger.Error(err),
		)
	}

	metrics.RecordEnrichFetch("error")
	return model.LiveMetrics{}, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (f *HTTPFetcher) attempt(ctx context.Context, profileID string) (model.LiveMetrics, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/profiles/%s/metrics", f.baseURL, url.PathEscape(profileID))
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.LiveMetrics{}, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return model.LiveMetrics{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.LiveMetrics{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var wire wireMetrics
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return model.LiveMetrics{}, err
	}
	return model.LiveMetrics{
		Followers:      wire.Followers,
		EngagementRate: wire.EngagementRate,
	}, nil
}
