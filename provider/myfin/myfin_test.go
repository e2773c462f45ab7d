package myfin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Defaults(t *testing.T) {
	t.Parallel()

	p := NewProvider()

	assert.Equal(t, "myfin", p.Name())
	assert.Equal(t, time.Minute*10, p.Interval())
	assert.Equal(t, defaultPageCount, p.pageCount)
	assert.Equal(t, defaultBaseURL, p.baseURL)
}

func TestProvider_Collect(t *testing.T) {
	t.Parallel()

	t.Run("pages are aggregated", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("page") {
			case "1":
				fmt.Fprint(w, rateTable(
					rateRow("Bank One", "/bank/bank-one", "3,10", "3,15", "3,40", "3,46", "09:30"),
				))
			case "2":
				// Permanently failing page
				w.WriteHeader(http.StatusInternalServerError)
			case "3":
				fmt.Fprint(w, rateTable(
					rateRow("Bank Three", "/bank/bank-three", "3,12", "3,17", "3,41", "3,47", "10:00"),
				))
			default:
				fmt.Fprint(w, "<html><body>no table</body></html>")
			}
		}))
		defer srv.Close()

		p := NewProvider(
			WithBaseURL(srv.URL),
			WithPageCount(4),
		)
		p.sleepFn = func(_ context.Context, _ time.Duration) error {
			return nil
		}

		rates, err := p.Collect(context.Background())

		require.NoError(t, err)
		require.Len(t, rates, 2)

		// Results keep the page order
		assert.Equal(t, "bank-one", rates[0].BankEN)
		assert.Equal(t, "bank-three", rates[1].BankEN)
	})

	t.Run("all pages failing yields no records", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		p := NewProvider(
			WithBaseURL(srv.URL),
			WithPageCount(2),
		)
		p.sleepFn = func(_ context.Context, _ time.Duration) error {
			return nil
		}

		rates, err := p.Collect(context.Background())

		require.NoError(t, err)
		assert.Empty(t, rates)
	})
}
