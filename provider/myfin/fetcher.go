package myfin

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	defaultMaxRetries = 3
	backoffBase       = 2
)

// sleepDelegate blocks for the given duration, waking early
// if the context is cancelled
type sleepDelegate func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fetchPage fetches the raw HTML of a single listing page, retrying
// transient failures with exponential backoff
func (p *Provider) fetchPage(ctx context.Context, url string) (string, error) {
	// Prepare the request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("unable to create new GET request: %w", err)
	}

	for attempt := 1; ; attempt++ {
		html, err := p.doFetch(req)
		if err == nil {
			return html, nil
		}

		p.logger.Error(
			"unable to fetch page",
			"url", url,
			"attempt", attempt,
			"err", err,
		)

		// A cancelled context is not worth retrying
		if ctx.Err() != nil {
			return "", fmt.Errorf("unable to fetch %s: %w", url, ctx.Err())
		}

		if attempt > p.maxRetries {
			p.logger.Error(
				"giving up on page fetch",
				"url", url,
				"attempts", attempt,
			)

			return "", fmt.Errorf("unable to fetch %s after %d attempts: %w", url, attempt, err)
		}

		backoff := time.Duration(math.Pow(backoffBase, float64(attempt))) * time.Second

		if err := p.sleepFn(ctx, backoff); err != nil {
			return "", fmt.Errorf("unable to fetch %s: %w", url, err)
		}
	}
}

// doFetch executes a single fetch attempt
func (p *Provider) doFetch(req *http.Request) (string, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("unable to read response body: %w", err)
	}

	return string(body), nil
}
