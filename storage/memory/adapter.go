package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sig-0/bankrates/storage"
	"github.com/sig-0/bankrates/storage/types"
)

var errInvalidColumn = errors.New("column is not a quote column")

type Storage struct {
	data   map[string]*types.StoredRate // bank ID -> rate
	nextID int64

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		data: make(map[string]*types.StoredRate),
	}
}

func (s *Storage) InsertRates(_ context.Context, rates []*types.Rate) error {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rates {
		if _, ok := s.data[r.BankEN]; ok {
			// Existing banks are left untouched
			continue
		}

		s.nextID++

		s.data[r.BankEN] = &types.StoredRate{
			Rate:      *r,
			ID:        s.nextID,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	return nil
}

func (s *Storage) AllRates(_ context.Context) ([]*types.StoredRate, error) {
	s.mu.RLock()

	out := make([]*types.StoredRate, 0, len(s.data))

	for _, v := range s.data {
		cp := *v
		out = append(out, &cp)
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (s *Storage) RateByBank(_ context.Context, bankEN string) (*types.StoredRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[bankEN]
	if !ok {
		return nil, nil //nolint:nilnil // absence is not an error
	}

	cp := *v

	return &cp, nil
}

func (s *Storage) QuoteValues(_ context.Context, column types.Column) ([]float64, error) {
	if !column.IsQuote() {
		return nil, fmt.Errorf("%w: %s", errInvalidColumn, column)
	}

	s.mu.RLock()

	out := make([]float64, 0, len(s.data))

	for _, v := range s.data {
		value, _ := v.Quote(column)

		out = append(out, value)
	}

	s.mu.RUnlock()

	sort.Float64s(out)

	return out, nil
}

func (s *Storage) RatesInRange(
	_ context.Context,
	column types.Column,
	min, max float64,
) ([]*types.StoredRate, error) {
	if !column.IsQuote() {
		return nil, fmt.Errorf("%w: %s", errInvalidColumn, column)
	}

	s.mu.RLock()

	out := make([]*types.StoredRate, 0, len(s.data))

	for _, v := range s.data {
		value, _ := v.Quote(column)
		if value < min || value > max {
			continue
		}

		cp := *v
		out = append(out, &cp)
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (s *Storage) UpdateRates(_ context.Context, fn func(tx storage.RateTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stage the updates on a copy, so an error from fn
	// leaves the live data untouched
	staged := make(map[string]*types.StoredRate, len(s.data))

	for k, v := range s.data {
		cp := *v
		staged[k] = &cp
	}

	if err := fn(&rateTx{data: staged}); err != nil {
		return err
	}

	s.data = staged

	return nil
}

type rateTx struct {
	data map[string]*types.StoredRate
}

func (tx *rateTx) UpdateRate(_ context.Context, bankEN string, columns types.RateColumns) (int64, error) {
	row, ok := tx.data[bankEN]
	if !ok {
		// Unknown banks are not inserted
		return 0, nil
	}

	row.Apply(columns)
	row.UpdatedAt = time.Now().UTC()

	return 1, nil
}
