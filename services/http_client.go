package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// upstreamError carries the HTTP status of a failed external API call so the
// retry policy can distinguish transient failures (429, 5xx) from permanent
// ones.
type upstreamError struct {
	service string
	status  int
	body    string
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.service, e.status, e.body)
}

func isTransient(err error) bool {
	var ue *upstreamError
	if errors.As(err, &ue) {
		return ue.status == http.StatusTooManyRequests || ue.status >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// apiClient wraps the process-wide http.Client with per-service rate
// limiting and retries. Both external source clients share one underlying
// connection pool.
type apiClient struct {
	http    *http.Client
	limiter *RateLimiter
	retry   RetryPolicy
	service string
	logger  *zap.Logger
}

func newAPIClient(httpClient *http.Client, limiter *RateLimiter, service string, logger *zap.Logger) *apiClient {
	return &apiClient{
		http:    httpClient,
		limiter: limiter,
		retry:   DefaultRetryPolicy(),
		service: service,
		logger:  logger,
	}
}

// getJSON performs a rate-limited, retried GET and decodes the JSON body
// into out.
func (c *apiClient) getJSON(ctx context.Context, rawURL string, out any) error {
	return c.retry.Do(ctx, c.logger, c.service+" GET", func() error {
		if err := c.limiter.WaitForSlot(ctx, c.service); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create %s request: %w", c.service, err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("failed to call %s API: %w", c.service, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read %s response: %w", c.service, err)
		}
		if resp.StatusCode != http.StatusOK {
			return &upstreamError{service: c.service, status: resp.StatusCode, body: truncate(string(body), 200)}
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse %s JSON: %w", c.service, err)
		}
		return nil
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
