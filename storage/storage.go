package storage

import (
	"context"

	"github.com/sig-0/bankrates/storage/types"
)

// Storage is an abstraction over persisted bank rate data
type Storage interface {
	// InsertRates inserts the given rates as new bank rows.
	// Banks that already have a row are left untouched
	InsertRates(ctx context.Context, rates []*types.Rate) error

	// AllRates returns all persisted bank rates
	AllRates(ctx context.Context) ([]*types.StoredRate, error)

	// RateByBank returns the persisted rate for the given bank ID,
	// or nil if the bank is not present
	RateByBank(ctx context.Context, bankEN string) (*types.StoredRate, error)

	// QuoteValues returns all values of the given quote column,
	// in ascending order
	QuoteValues(ctx context.Context, column types.Column) ([]float64, error)

	// RatesInRange returns the rates whose quote column value falls
	// within the given closed range
	RatesInRange(ctx context.Context, column types.Column, min, max float64) ([]*types.StoredRate, error)

	// UpdateRates runs fn inside a single atomic unit of work.
	// If fn returns an error, every update it issued is rolled back
	UpdateRates(ctx context.Context, fn func(tx RateTx) error) error
}

// RateTx is the update surface of a single rate update transaction
type RateTx interface {
	// UpdateRate applies the column values to the bank row matching the
	// given bank ID, returning the number of rows affected (0 or 1)
	UpdateRate(ctx context.Context, bankEN string, columns types.RateColumns) (int64, error)
}
