package usaspending

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/feldmangn/nih-awards-tracker/internal/model"
)

const userAgent = "nih-awards-tracker/txn/1.4 (+https://github.com/feldmangn/nih-awards-tracker)"

// Client wraps an HTTP client with the bounded retry policy the
// USAspending endpoints need: exponential backoff on 429/5xx, a
// server-supplied Retry-After honored when present, and a fixed
// per-request timeout. Other 4xx responses are returned as-is and never
// retried.
type Client struct {
	cfg  model.Config
	http *http.Client
}

// NewClient creates a reusable session for one pipeline invocation.
func NewClient(cfg model.Config) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// do issues one request with up to cfg.Retry.MaxAttempts attempts. The
// body is rebuilt per attempt. Network errors count as retryable; a
// response outside the retryable status set ends the loop immediately.
func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.Retry.MaxAttempts; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("building %s request: %w", method, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < c.cfg.Retry.MaxAttempts {
				if sleepErr := sleepCtx(ctx, c.backoff(attempt)); sleepErr != nil {
					return nil, sleepErr
				}
				continue
			}
			return nil, fmt.Errorf("request failed after %d attempts: %w", attempt, err)
		}

		if c.cfg.Retry.Retryable(resp.StatusCode) && attempt < c.cfg.Retry.MaxAttempts {
			delay := c.backoff(attempt)
			if after := retryAfter(resp); after > 0 {
				delay = after
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if sleepErr := sleepCtx(ctx, delay); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.cfg.Retry.MaxAttempts, lastErr)
}

// backoff computes the exponential delay for the given attempt number.
func (c *Client) backoff(attempt int) time.Duration {
	secs := c.cfg.Retry.BackoffFactor * math.Pow(2, float64(attempt-1))
	return time.Duration(secs * float64(time.Second))
}

// retryAfter reads a server-supplied Retry-After header in seconds.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
