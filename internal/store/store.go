// Package store defines the upsert contract the fetch layer writes through
// and a GORM-backed implementation of it. The fetch layer never reads back
// its own writes to decide control flow; a fresher fetch for the same
// natural key always overwrites, never duplicates.
package store

import (
	"context"

	"marketdata/internal/provider"
)

// PriceStore upserts daily price points keyed by (symbol, exchange, date).
type PriceStore interface {
	UpsertPrice(ctx context.Context, p provider.PricePoint) error
}

// RateStore upserts exchange rates keyed by (from, to, date).
type RateStore interface {
	UpsertRate(ctx context.Context, r provider.ExchangeRate) error
}

// SavePrices writes all points through the store, continuing past
// individual failures and returning how many were persisted.
func SavePrices(ctx context.Context, s PriceStore, points []provider.PricePoint) (int, error) {
	var firstErr error
	saved := 0
	for _, p := range points {
		if err := s.UpsertPrice(ctx, p); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		saved++
	}
	return saved, firstErr
}

// SaveRates writes all rates through the store, continuing past individual
// failures and returning how many were persisted.
func SaveRates(ctx context.Context, s RateStore, rates []provider.ExchangeRate) (int, error) {
	var firstErr error
	saved := 0
	for _, r := range rates {
		if err := s.UpsertRate(ctx, r); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		saved++
	}
	return saved, firstErr
}
