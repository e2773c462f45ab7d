package ingest

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/sig-0/bankrates/storage/types"
)

// scheduledRun is a single scheduled provider collection run
type scheduledRun struct {
	at    time.Time
	name  string
	regID xid.ID
}

// Less is utilized to sort scheduled runs by their due-time (earliest == first)
func (a scheduledRun) Less(b scheduledRun) bool {
	return a.at.Before(b.at)
}

// workerInfo is the work context for the provider routine
type workerInfo struct {
	provider Provider
	resCh    chan<- *workerResponse
	regID    xid.ID
}

// workerResponse is the provider routine response
type workerResponse struct {
	error error         // encountered error, if any
	rates []*types.Rate // the collected bank rates
	name  string        // the provider name
	regID xid.ID        // the registration ID
}

// handleJob collects using the provider
func handleJob(
	ctx context.Context,
	info *workerInfo,
) {
	rates, err := info.provider.Collect(ctx)

	response := &workerResponse{
		error: err,
		rates: rates,
		name:  info.provider.Name(),
		regID: info.regID,
	}

	select {
	case <-ctx.Done():
	case info.resCh <- response:
	}
}
