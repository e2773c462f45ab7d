package reconcile

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sig-0/bankrates/storage"
	"github.com/sig-0/bankrates/storage/types"
)

// Reconciler applies collected bank rates onto the persisted table
// as a single atomic bulk update
type Reconciler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new Reconciler instance
func New(storage storage.Storage, opts ...Option) *Reconciler {
	r := &Reconciler{
		storage: storage,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// Apply the options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reconcile updates the persisted rows for the given rates, keyed by their
// bank ID, inside one atomic unit of work. Unknown banks are not inserted,
// and a store error rolls back the entire batch.
// Returns the total number of updated rows
func (r *Reconciler) Reconcile(ctx context.Context, rates []*types.Rate) (int64, error) {
	var updated int64

	err := r.storage.UpdateRates(ctx, func(tx storage.RateTx) error {
		for _, rate := range rates {
			if rate.BankEN == "" {
				r.logger.Warn(
					"skipping rate with no bank ID",
					"bank_name", rate.BankName,
				)

				continue
			}

			columns := rate.UpdateColumns()
			if len(columns) == 0 {
				r.logger.Warn(
					"skipping rate with no update columns",
					"bank_en", rate.BankEN,
				)

				continue
			}

			affected, err := tx.UpdateRate(ctx, rate.BankEN, columns)
			if err != nil {
				return fmt.Errorf("unable to update rate for %s: %w", rate.BankEN, err)
			}

			updated += affected
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("unable to reconcile rates: %w", err)
	}

	r.logger.Info(
		"rates reconciled",
		"received", len(rates),
		"updated", updated,
	)

	return updated, nil
}
