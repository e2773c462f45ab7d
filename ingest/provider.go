package ingest

import (
	"context"
	"time"

	"github.com/sig-0/bankrates/storage/types"
)

// Provider is a single bank rate provider
type Provider interface {
	// Name returns the unique name of the provider
	Name() string

	// Interval returns the interval at which the provider should be run
	Interval() time.Duration

	// Collect is the provider's main collection job, yielding bank rate records
	Collect(context.Context) ([]*types.Rate, error)
}

// Reconciler applies collected rates onto the persisted bank rate table
type Reconciler interface {
	// Reconcile persists the given rates, returning the number of updated rows
	Reconcile(ctx context.Context, rates []*types.Rate) (int64, error)
}
