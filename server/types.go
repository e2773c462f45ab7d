package server

import "github.com/sig-0/bankrates/storage/types"

type RatesResponse struct {
	Results []*types.StoredRate `json:"results"`
}

type BestQuoteResponse struct {
	Rate  float64  `json:"rate"`
	Banks []string `json:"banks"`
}

type QuoteRangeResponse struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
