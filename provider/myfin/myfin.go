package myfin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sig-0/bankrates/storage/types"
)

const defaultBaseURL = "https://ru.myfin.by"

const (
	defaultInterval  = time.Minute * 10
	defaultPageCount = 4

	connectTimeout = time.Second * 5
	totalTimeout   = time.Second * 10
)

// Provider scrapes bank exchange rates from the myfin.by listing pages
type Provider struct {
	logger *slog.Logger
	client *http.Client

	baseURL   string
	interval  time.Duration
	pageCount int

	maxRetries int
	sleepFn    sleepDelegate
}

// NewProvider creates a new instance of the myfin.by provider
func NewProvider(opts ...Option) *Provider {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = (&net.Dialer{
		Timeout: connectTimeout,
	}).DialContext

	p := &Provider{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		client: &http.Client{
			Timeout:   totalTimeout,
			Transport: tr,
		},
		baseURL:    defaultBaseURL,
		interval:   defaultInterval,
		pageCount:  defaultPageCount,
		maxRetries: defaultMaxRetries,
		sleepFn:    sleepContext,
	}

	// Apply the options
	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Provider) Name() string {
	return "myfin"
}

func (p *Provider) Interval() time.Duration {
	return p.interval
}

// Collect gathers the bank rates from all listing pages concurrently.
// A failed page contributes no records, and leaves the other pages unaffected
func (p *Provider) Collect(ctx context.Context) ([]*types.Rate, error) {
	var wg sync.WaitGroup

	pages := make([][]*types.Rate, p.pageCount)

	for i := range pages {
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()

			pages[idx] = p.collectPage(ctx, idx+1)
		}(i)
	}

	wg.Wait()

	size := 0
	for _, rates := range pages {
		size += len(rates)
	}

	out := make([]*types.Rate, 0, size)
	for _, rates := range pages {
		out = append(out, rates...)
	}

	return out, nil
}

// collectPage fetches and parses a single listing page
func (p *Provider) collectPage(ctx context.Context, page int) []*types.Rate {
	url := fmt.Sprintf("%s/currency?page=%d", p.baseURL, page)

	html, err := p.fetchPage(ctx, url)
	if err != nil {
		return nil
	}

	return p.parseRateTable(html)
}
