package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/bankrates/storage/types"
)

var (
	errUnableToFetchRates  = errors.New("unable to fetch rates")
	errUnableToFetchQuotes = errors.New("unable to fetch quotes")

	errBankNotFound = errors.New("bank not found")
	errNoQuotes     = errors.New("no quotes available")

	errInvalidCurrency = errors.New("invalid currency (must be usd or eur)")
	errInvalidSide     = errors.New("invalid side (must be buy or sell)")
	errInvalidMin      = errors.New("invalid min")
	errInvalidMax      = errors.New("invalid max")
	errInvalidRange    = errors.New("invalid range (min must not exceed max)")
)

var quoteColumns = map[string]types.Column{
	"usd/buy":  types.ColumnUSDBuy,
	"usd/sell": types.ColumnUSDSell,
	"eur/buy":  types.ColumnEURBuy,
	"eur/sell": types.ColumnEURSell,
}

func (s *Server) Rates(w http.ResponseWriter, r *http.Request) {
	rates, err := s.storage.AllRates(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch rates",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	resp := &RatesResponse{
		Results: rates,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) RateForBank(w http.ResponseWriter, r *http.Request) {
	bankParam := chi.URLParam(r, "bank")

	rate, err := s.storage.RateByBank(r.Context(), bankParam)
	if err != nil {
		s.logger.Debug(
			"unable to fetch rate",
			"bank", bankParam,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	if rate == nil {
		writeError(w, http.StatusNotFound, errBankNotFound)

		return
	}

	writeJSON(w, http.StatusOK, rate)
}

func (s *Server) QuotesInRange(w http.ResponseWriter, r *http.Request) {
	var (
		currencyParam = chi.URLParam(r, "currency")
		sideParam     = chi.URLParam(r, "side")

		minParam = r.URL.Query().Get("min")
		maxParam = r.URL.Query().Get("max")
	)

	// Parse the quote column
	column, err := parseQuoteColumn(currencyParam, sideParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the quote range (defaults to [0, 0])
	minValue, maxValue, err := parseQuoteRange(minParam, maxParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	rates, err := s.storage.RatesInRange(r.Context(), column, minValue, maxValue)
	if err != nil {
		s.logger.Debug(
			"unable to fetch rates",
			"column", column,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	resp := &RatesResponse{
		Results: rates,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) BestQuote(w http.ResponseWriter, r *http.Request) {
	var (
		currencyParam = chi.URLParam(r, "currency")
		sideParam     = chi.URLParam(r, "side")
	)

	// Parse the quote column
	column, err := parseQuoteColumn(currencyParam, sideParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	values, err := s.storage.QuoteValues(r.Context(), column)
	if err != nil {
		s.logger.Debug(
			"unable to fetch quotes",
			"column", column,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchQuotes,
		)

		return
	}

	if len(values) == 0 {
		writeError(w, http.StatusNotFound, errNoQuotes)

		return
	}

	// The best buy quote is the lowest, the best sell quote the highest
	best := values[0]
	if strings.HasSuffix(column.String(), "sell") {
		best = values[len(values)-1]
	}

	// Fetch every bank quoting the extreme value
	rates, err := s.storage.RatesInRange(r.Context(), column, best, best)
	if err != nil {
		s.logger.Debug(
			"unable to fetch rates",
			"column", column,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	banks := make([]string, 0, len(rates))
	for _, rate := range rates {
		banks = append(banks, rate.BankName)
	}

	resp := &BestQuoteResponse{
		Rate:  best,
		Banks: banks,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) QuoteRange(w http.ResponseWriter, r *http.Request) {
	var (
		currencyParam = chi.URLParam(r, "currency")
		sideParam     = chi.URLParam(r, "side")
	)

	// Parse the quote column
	column, err := parseQuoteColumn(currencyParam, sideParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	values, err := s.storage.QuoteValues(r.Context(), column)
	if err != nil {
		s.logger.Debug(
			"unable to fetch quotes",
			"column", column,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchQuotes,
		)

		return
	}

	resp := &QuoteRangeResponse{}

	if len(values) > 0 {
		resp.Min = values[0]
		resp.Max = values[len(values)-1]
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseQuoteColumn(currencyRaw, sideRaw string) (types.Column, error) {
	currency := strings.ToLower(strings.TrimSpace(currencyRaw))
	if currency != "usd" && currency != "eur" {
		return "", errInvalidCurrency
	}

	side := strings.ToLower(strings.TrimSpace(sideRaw))
	if side != "buy" && side != "sell" {
		return "", errInvalidSide
	}

	return quoteColumns[currency+"/"+side], nil
}

func parseQuoteRange(minRaw, maxRaw string) (float64, float64, error) {
	var minValue float64

	if v := strings.TrimSpace(minRaw); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, 0, errInvalidMin
		}

		minValue = n
	}

	var maxValue float64

	if v := strings.TrimSpace(maxRaw); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, 0, errInvalidMax
		}

		maxValue = n
	}

	if minValue > maxValue {
		return 0, 0, errInvalidRange
	}

	return minValue, maxValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
