package myfin

import (
	"log/slog"
	"net/http"
	"time"
)

type Option func(p *Provider)

// WithLogger specifies the logger for the provider
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = l
	}
}

// WithInterval specifies the reconciliation interval for the provider.
// Defaults to 10m
func WithInterval(d time.Duration) Option {
	return func(p *Provider) {
		p.interval = d
	}
}

// WithBaseURL specifies the listing site base URL
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		p.baseURL = url
	}
}

// WithPageCount specifies the number of listing pages to collect.
// Defaults to 4
func WithPageCount(count int) Option {
	return func(p *Provider) {
		p.pageCount = count
	}
}

// WithClient specifies the HTTP client used for page fetches
func WithClient(c *http.Client) Option {
	return func(p *Provider) {
		p.client = c
	}
}
