package myfin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>rates</html>")
	}))
	defer srv.Close()

	var sleeps []time.Duration

	p := NewProvider()
	p.sleepFn = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)

		return nil
	}

	html, err := p.fetchPage(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "<html>rates</html>", html)
	assert.Empty(t, sleeps)
}

func TestFetcher_SuccessAfterRetry(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		fmt.Fprint(w, "<html>rates</html>")
	}))
	defer srv.Close()

	var sleeps []time.Duration

	p := NewProvider()
	p.sleepFn = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)

		return nil
	}

	html, err := p.fetchPage(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "<html>rates</html>", html)

	assert.EqualValues(t, 3, requests.Load())
	assert.Equal(t, []time.Duration{
		time.Second * 2,
		time.Second * 4,
	}, sleeps)
}

func TestFetcher_RetryExhaustion(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)

		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var sleeps []time.Duration

	p := NewProvider()
	p.sleepFn = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)

		return nil
	}

	_, err := p.fetchPage(context.Background(), srv.URL)

	require.Error(t, err)

	// Initial attempt plus 3 retries, with exponential waits in between
	assert.EqualValues(t, 4, requests.Load())
	assert.Equal(t, []time.Duration{
		time.Second * 2,
		time.Second * 4,
		time.Second * 8,
	}, sleeps)
}

func TestFetcher_CancelledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sleeps []time.Duration

	p := NewProvider()
	p.sleepFn = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)

		return nil
	}

	_, err := p.fetchPage(ctx, srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// No retries for a cancelled context
	assert.Empty(t, sleeps)
}

func TestFetcher_InvalidURL(t *testing.T) {
	t.Parallel()

	var sleeps []time.Duration

	p := NewProvider()
	p.sleepFn = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)

		return nil
	}

	_, err := p.fetchPage(context.Background(), ":")

	require.Error(t, err)

	// No retries for a request that cannot be constructed
	assert.Empty(t, sleeps)
}
