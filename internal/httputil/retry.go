// Package httputil wraps outbound HTTP for the job board fetchers with
// retry, backoff, and Retry-After handling. Guest endpoints rate-limit
// aggressively, so pacing lives here rather than in each fetcher.
package httputil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a response a fetcher will buffer. Search
// fragments and job postings are far below this.
const maxBodyBytes = 10 << 20

// RetryConfig controls client selection and retry behavior.
type RetryConfig struct {
	Client       *http.Client // nil means http.DefaultClient
	MaxAttempts  int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	JitterFactor float64 // fraction of delay to randomize (0..1)
}

// DefaultRetryConfig returns defaults tuned for scraping guest endpoints:
// few attempts, generous delays.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		BaseDelay:    2 * time.Second,
		MaxDelay:     60 * time.Second,
		JitterFactor: 0.25,
	}
}

func (cfg RetryConfig) client() *http.Client {
	if cfg.Client != nil {
		return cfg.Client
	}
	return http.DefaultClient
}

// Do executes an HTTP request with retry/backoff. buildReq is called per
// attempt because request bodies are consumed on read and must be recreated.
//
// Retries on: network errors, HTTP 429, HTTP 5xx.
// Fails fast on 4xx (non-429); the response is returned with body intact.
func Do(ctx context.Context, buildReq func() (*http.Request, error), cfg RetryConfig) (*http.Response, error) {
	var lastErr error

	for attempt := range cfg.MaxAttempts {
		req, err := buildReq()
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := cfg.client().Do(req.WithContext(ctx))
		if err != nil {
			lastErr = err
			if attempt < cfg.MaxAttempts-1 {
				slog.Warn("fetch: retrying after network error",
					"attempt", attempt+1,
					"max", cfg.MaxAttempts,
					"err", err,
				)
				if sleepErr := sleepWithContext(ctx, backoff(cfg, attempt, nil)); sleepErr != nil {
					return nil, sleepErr
				}
			}
			continue
		}

		// Success, no retry needed.
		if resp.StatusCode < 400 {
			return resp, nil
		}

		// 429 Too Many Requests: retry, honoring Retry-After if present.
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			// Must drain body before retrying.
			resp.Body.Close()
			if attempt < cfg.MaxAttempts-1 {
				delay := backoff(cfg, attempt, resp)
				slog.Warn("fetch: retrying after 429",
					"attempt", attempt+1,
					"max", cfg.MaxAttempts,
					"delay", delay,
				)
				if sleepErr := sleepWithContext(ctx, delay); sleepErr != nil {
					return nil, sleepErr
				}
			}
			continue
		}

		// 5xx: retry.
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			resp.Body.Close()
			if attempt < cfg.MaxAttempts-1 {
				delay := backoff(cfg, attempt, resp)
				slog.Warn("fetch: retrying after server error",
					"attempt", attempt+1,
					"max", cfg.MaxAttempts,
					"status", resp.StatusCode,
					"delay", delay,
				)
				if sleepErr := sleepWithContext(ctx, delay); sleepErr != nil {
					return nil, sleepErr
				}
			}
			continue
		}

		// 4xx (non-429): fail fast, return response with body intact.
		return resp, nil
	}

	return nil, fmt.Errorf("all %d attempts exhausted: %w", cfg.MaxAttempts, lastErr)
}

// Get fetches url with the given headers and returns the body. Non-200
// statuses that survive the retry loop come back as errors; bodies are
// capped at maxBodyBytes.
func Get(ctx context.Context, url string, header http.Header, cfg RetryConfig) ([]byte, error) {
	resp, err := Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		return req, nil
	}, cfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// backoff computes the sleep duration for the given attempt. If the response
// contains a Retry-After header, that value takes precedence.
func backoff(cfg RetryConfig, attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if ra := parseRetryAfter(resp.Header.Get("Retry-After")); ra > 0 {
			return ra
		}
	}

	delay := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	jitter := delay * cfg.JitterFactor * (rand.Float64()*2 - 1) // ±jitter
	delay += jitter
	if delay < 0 {
		delay = float64(cfg.BaseDelay)
	}

	return time.Duration(delay)
}

// parseRetryAfter parses the Retry-After header value. It supports:
//   - seconds (e.g. "120")
//   - HTTP-date (e.g. "Thu, 01 Dec 2024 16:00:00 GMT")
//
// Returns 0 if the header is empty or unparseable.
func parseRetryAfter(val string) time.Duration {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}

	// Try seconds first.
	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}

	// Try HTTP-date.
	if t, err := time.Parse(time.RFC1123, val); err == nil {
		d := time.Until(t)
		if d > 0 {
			return d
		}
	}

	return 0
}

// sleepWithContext sleeps for d but returns immediately if ctx is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
