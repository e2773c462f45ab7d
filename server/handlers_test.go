package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/bankrates/storage/memory"
	"github.com/sig-0/bankrates/storage/mock"

	"github.com/sig-0/bankrates/storage/types"
)

func TestHandlers_Rates(t *testing.T) {
	t.Parallel()

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			AllRatesFn: func(_ context.Context) ([]*types.StoredRate, error) {
				return nil, errors.New("boom")
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/rates", http.NoBody)
		w := httptest.NewRecorder()

		s.Rates(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		expected := []*types.StoredRate{
			{
				Rate: types.Rate{
					BankName: "Alfa Bank",
					BankEN:   "alfabank",
					USDBuy:   3.10,
					USDSell:  3.15,
				},
				ID: 1,
			},
			{
				Rate: types.Rate{
					BankName: "MT Bank",
					BankEN:   "mtbank",
					USDBuy:   3.08,
					USDSell:  3.14,
				},
				ID: 2,
			},
		}

		storage := &mock.Storage{
			AllRatesFn: func(_ context.Context) ([]*types.StoredRate, error) {
				return expected, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/rates", http.NoBody)
		w := httptest.NewRecorder()

		s.Rates(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp RatesResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Results, 2)

		assert.Equal(t, "alfabank", resp.Results[0].BankEN)
		assert.Equal(t, "mtbank", resp.Results[1].BankEN)
	})
}

func TestHandlers_RateForBank(t *testing.T) {
	t.Parallel()

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			RateByBankFn: func(_ context.Context, _ string) (*types.StoredRate, error) {
				return nil, errors.New("boom")
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/rates/alfabank", http.NoBody)
		req = withRouteParams(t, req, map[string]string{"bank": "alfabank"})

		w := httptest.NewRecorder()
		s.RateForBank(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("unknown bank", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			RateByBankFn: func(_ context.Context, _ string) (*types.StoredRate, error) {
				return nil, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/rates/unknown", http.NoBody)
		req = withRouteParams(t, req, map[string]string{"bank": "unknown"})

		w := httptest.NewRecorder()
		s.RateForBank(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var capturedBank string

		storage := &mock.Storage{
			RateByBankFn: func(_ context.Context, bankEN string) (*types.StoredRate, error) {
				capturedBank = bankEN

				return &types.StoredRate{
					Rate: types.Rate{
						BankName: "Alfa Bank",
						BankEN:   "alfabank",
						USDBuy:   3.10,
					},
					ID: 1,
				}, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/rates/alfabank", http.NoBody)
		req = withRouteParams(t, req, map[string]string{"bank": "alfabank"})

		w := httptest.NewRecorder()
		s.RateForBank(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var rate types.StoredRate

		require.NoError(t, json.NewDecoder(w.Body).Decode(&rate))

		assert.Equal(t, "alfabank", rate.BankEN)
		assert.Equal(t, "alfabank", capturedBank)
		assert.InDelta(t, 3.10, rate.USDBuy, 0.0001)
	})
}

func TestHandlers_QuotesInRange(t *testing.T) {
	t.Parallel()

	t.Run("invalid currency", func(t *testing.T) {
		t.Parallel()

		var called bool

		storage := &mock.Storage{
			RatesInRangeFn: func(
				_ context.Context,
				_ types.Column,
				_, _ float64,
			) ([]*types.StoredRate, error) {
				called = true

				return nil, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/gbp/buy", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "gbp",
			"side":     "buy",
		})

		w := httptest.NewRecorder()
		s.QuotesInRange(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, called)
	})

	t.Run("invalid range", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{},
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/usd/buy?min=3.2&max=3.1", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "usd",
			"side":     "buy",
		})

		w := httptest.NewRecorder()
		s.QuotesInRange(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			RatesInRangeFn: func(
				_ context.Context,
				_ types.Column,
				_, _ float64,
			) ([]*types.StoredRate, error) {
				return nil, errors.New("boom")
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/usd/buy?min=3&max=4", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "usd",
			"side":     "buy",
		})

		w := httptest.NewRecorder()
		s.QuotesInRange(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var (
			capturedColumn types.Column
			capturedMin    float64
			capturedMax    float64
		)

		storage := &mock.Storage{
			RatesInRangeFn: func(
				_ context.Context,
				column types.Column,
				minValue, maxValue float64,
			) ([]*types.StoredRate, error) {
				capturedColumn = column
				capturedMin = minValue
				capturedMax = maxValue

				return []*types.StoredRate{
					{
						Rate: types.Rate{
							BankEN:  "alfabank",
							EURSell: 3.55,
						},
						ID: 1,
					},
				}, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(
			http.MethodGet,
			"/v1/quotes/EUR/Sell?min=3.5&max=3.6",
			http.NoBody,
		)
		req = withRouteParams(t, req, map[string]string{
			"currency": "EUR",
			"side":     "Sell",
		})

		w := httptest.NewRecorder()
		s.QuotesInRange(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp RatesResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Results, 1)

		assert.Equal(t, "alfabank", resp.Results[0].BankEN)
		assert.Equal(t, types.ColumnEURSell, capturedColumn)
		assert.InDelta(t, 3.5, capturedMin, 0.0001)
		assert.InDelta(t, 3.6, capturedMax, 0.0001)
	})
}

func TestHandlers_BestQuote(t *testing.T) {
	t.Parallel()

	t.Run("invalid side", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{},
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/usd/mid/best", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "usd",
			"side":     "mid",
		})

		w := httptest.NewRecorder()
		s.BestQuote(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			QuoteValuesFn: func(_ context.Context, _ types.Column) ([]float64, error) {
				return nil, errors.New("boom")
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/usd/buy/best", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "usd",
			"side":     "buy",
		})

		w := httptest.NewRecorder()
		s.BestQuote(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("no quotes", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			QuoteValuesFn: func(_ context.Context, _ types.Column) ([]float64, error) {
				return nil, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/usd/buy/best", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "usd",
			"side":     "buy",
		})

		w := httptest.NewRecorder()
		s.BestQuote(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("best buy is the lowest quote", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: seededStorage(t),
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/usd/buy/best", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "usd",
			"side":     "buy",
		})

		w := httptest.NewRecorder()
		s.BestQuote(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeBestQuote(t, w)

		assert.InDelta(t, 3.05, resp.Rate, 0.0001)
		assert.Equal(t, []string{"MT Bank"}, resp.Banks)
	})

	t.Run("best sell ties return every bank", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: seededStorage(t),
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/usd/sell/best", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "usd",
			"side":     "sell",
		})

		w := httptest.NewRecorder()
		s.BestQuote(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeBestQuote(t, w)

		assert.InDelta(t, 3.15, resp.Rate, 0.0001)
		assert.ElementsMatch(t, []string{"Alfa Bank", "Belarusbank"}, resp.Banks)
	})
}

func TestHandlers_QuoteRange(t *testing.T) {
	t.Parallel()

	t.Run("empty table", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			QuoteValuesFn: func(_ context.Context, _ types.Column) ([]float64, error) {
				return nil, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/eur/buy/range", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "eur",
			"side":     "buy",
		})

		w := httptest.NewRecorder()
		s.QuoteRange(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp QuoteRangeResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		assert.Zero(t, resp.Min)
		assert.Zero(t, resp.Max)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: seededStorage(t),
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/usd/sell/range", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "usd",
			"side":     "sell",
		})

		w := httptest.NewRecorder()
		s.QuoteRange(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp QuoteRangeResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		assert.InDelta(t, 3.10, resp.Min, 0.0001)
		assert.InDelta(t, 3.15, resp.Max, 0.0001)
	})
}

func TestUtils_ParseQuoteColumn(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name     string
		currency string
		side     string
		expected types.Column
		err      error
	}{
		{
			name:     "usd buy",
			currency: "usd",
			side:     "buy",
			expected: types.ColumnUSDBuy,
		},
		{
			name:     "eur sell",
			currency: "eur",
			side:     "sell",
			expected: types.ColumnEURSell,
		},
		{
			name:     "mixed case",
			currency: "USD",
			side:     "Sell",
			expected: types.ColumnUSDSell,
		},
		{
			name:     "invalid currency",
			currency: "gbp",
			side:     "buy",
			err:      errInvalidCurrency,
		},
		{
			name:     "invalid side",
			currency: "eur",
			side:     "mid",
			err:      errInvalidSide,
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			column, err := parseQuoteColumn(testCase.currency, testCase.side)

			if testCase.err != nil {
				assert.ErrorIs(t, err, testCase.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.expected, column)
		})
	}
}

func TestUtils_ParseQuoteRange(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		minValue, maxValue, err := parseQuoteRange("", "")

		require.NoError(t, err)
		assert.Zero(t, minValue)
		assert.Zero(t, maxValue)
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		minValue, maxValue, err := parseQuoteRange("3.1", "3.25")

		require.NoError(t, err)
		assert.InDelta(t, 3.1, minValue, 0.0001)
		assert.InDelta(t, 3.25, maxValue, 0.0001)
	})

	t.Run("invalid min", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseQuoteRange("nope", "3.25")

		assert.ErrorIs(t, err, errInvalidMin)
	})

	t.Run("invalid max", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseQuoteRange("3.1", "nope")

		assert.ErrorIs(t, err, errInvalidMax)
	})

	t.Run("min above max", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseQuoteRange("3.25", "3.1")

		assert.ErrorIs(t, err, errInvalidRange)
	})
}

func withRouteParams(t *testing.T, req *http.Request, params map[string]string) *http.Request {
	t.Helper()

	rctx := chi.NewRouteContext()

	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// seededStorage returns a live in-memory store with three banks,
// two of which tie on the best usd_sell quote
func seededStorage(t *testing.T) *memory.Storage {
	t.Helper()

	store := memory.NewStorage()

	err := store.InsertRates(context.Background(), []*types.Rate{
		{
			BankName: "Alfa Bank",
			BankEN:   "alfabank",
			USDBuy:   3.08,
			USDSell:  3.15,
		},
		{
			BankName: "MT Bank",
			BankEN:   "mtbank",
			USDBuy:   3.05,
			USDSell:  3.10,
		},
		{
			BankName: "Belarusbank",
			BankEN:   "belarusbank",
			USDBuy:   3.07,
			USDSell:  3.15,
		},
	})
	require.NoError(t, err)

	return store
}

func decodeBestQuote(t *testing.T, w *httptest.ResponseRecorder) *BestQuoteResponse {
	t.Helper()

	var resp BestQuoteResponse

	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	return &resp
}
