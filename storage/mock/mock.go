package mock

import (
	"context"

	"github.com/sig-0/bankrates/storage"
	"github.com/sig-0/bankrates/storage/types"
)

type (
	InsertRatesDelegate  func(context.Context, []*types.Rate) error
	AllRatesDelegate     func(context.Context) ([]*types.StoredRate, error)
	RateByBankDelegate   func(context.Context, string) (*types.StoredRate, error)
	QuoteValuesDelegate  func(context.Context, types.Column) ([]float64, error)
	RatesInRangeDelegate func(context.Context, types.Column, float64, float64) ([]*types.StoredRate, error)
	UpdateRatesDelegate  func(context.Context, func(tx storage.RateTx) error) error
)

type Storage struct {
	InsertRatesFn  InsertRatesDelegate
	AllRatesFn     AllRatesDelegate
	RateByBankFn   RateByBankDelegate
	QuoteValuesFn  QuoteValuesDelegate
	RatesInRangeFn RatesInRangeDelegate
	UpdateRatesFn  UpdateRatesDelegate
}

func (m *Storage) InsertRates(ctx context.Context, rates []*types.Rate) error {
	if m.InsertRatesFn != nil {
		return m.InsertRatesFn(ctx, rates)
	}

	return nil
}

func (m *Storage) AllRates(ctx context.Context) ([]*types.StoredRate, error) {
	if m.AllRatesFn != nil {
		return m.AllRatesFn(ctx)
	}

	return nil, nil
}

func (m *Storage) RateByBank(ctx context.Context, bankEN string) (*types.StoredRate, error) {
	if m.RateByBankFn != nil {
		return m.RateByBankFn(ctx, bankEN)
	}

	return nil, nil
}

func (m *Storage) QuoteValues(ctx context.Context, column types.Column) ([]float64, error) {
	if m.QuoteValuesFn != nil {
		return m.QuoteValuesFn(ctx, column)
	}

	return nil, nil
}

func (m *Storage) RatesInRange(
	ctx context.Context,
	column types.Column,
	min, max float64,
) ([]*types.StoredRate, error) {
	if m.RatesInRangeFn != nil {
		return m.RatesInRangeFn(ctx, column, min, max)
	}

	return nil, nil
}

func (m *Storage) UpdateRates(ctx context.Context, fn func(tx storage.RateTx) error) error {
	if m.UpdateRatesFn != nil {
		return m.UpdateRatesFn(ctx, fn)
	}

	return nil
}

type UpdateRateDelegate func(context.Context, string, types.RateColumns) (int64, error)

// RateTx is a mock rate update transaction
type RateTx struct {
	UpdateRateFn UpdateRateDelegate
}

func (m *RateTx) UpdateRate(ctx context.Context, bankEN string, columns types.RateColumns) (int64, error) {
	if m.UpdateRateFn != nil {
		return m.UpdateRateFn(ctx, bankEN, columns)
	}

	return 0, nil
}
