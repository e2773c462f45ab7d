package ingest

import (
	"context"
	"time"

	"github.com/sig-0/bankrates/storage/types"
)

type (
	nameDelegate      func() string
	intervalDelegate  func() time.Duration
	collectDelegate   func(context.Context) ([]*types.Rate, error)
	reconcileDelegate func(context.Context, []*types.Rate) (int64, error)
)

type mockProvider struct {
	nameFn     nameDelegate
	intervalFn intervalDelegate
	collectFn  collectDelegate
}

func (m *mockProvider) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockProvider) Interval() time.Duration {
	if m.intervalFn != nil {
		return m.intervalFn()
	}

	return 0
}

func (m *mockProvider) Collect(ctx context.Context) ([]*types.Rate, error) {
	if m.collectFn != nil {
		return m.collectFn(ctx)
	}

	return nil, nil
}

type mockReconciler struct {
	reconcileFn reconcileDelegate
}

func (m *mockReconciler) Reconcile(ctx context.Context, rates []*types.Rate) (int64, error) {
	if m.reconcileFn != nil {
		return m.reconcileFn(ctx, rates)
	}

	return 0, nil
}
