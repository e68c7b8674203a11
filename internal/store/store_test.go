package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"marketdata/internal/provider"
)

type flakyPriceStore struct {
	calls   int
	failOn  int
	written []provider.PricePoint
}

func (s *flakyPriceStore) UpsertPrice(ctx context.Context, p provider.PricePoint) error {
	s.calls++
	if s.calls == s.failOn {
		return errors.New("deadlock detected")
	}
	s.written = append(s.written, p)
	return nil
}

func point(day int) provider.PricePoint {
	return provider.PricePoint{
		Symbol:   "600000",
		Exchange: "XSHG",
		Date:     time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Price:    decimal.NewFromInt(int64(day)),
		Currency: "CNY",
	}
}

func TestSavePricesContinuesPastFailure(t *testing.T) {
	s := &flakyPriceStore{failOn: 2}
	points := []provider.PricePoint{point(1), point(2), point(3)}

	saved, err := SavePrices(context.Background(), s, points)
	if saved != 2 {
		t.Fatalf("saved %d, want 2", saved)
	}
	if err == nil || err.Error() != "deadlock detected" {
		t.Fatalf("want first error surfaced, got %v", err)
	}
	if len(s.written) != 2 {
		t.Fatalf("written %d, want 2", len(s.written))
	}
}

func TestSavePricesEmpty(t *testing.T) {
	s := &flakyPriceStore{}
	saved, err := SavePrices(context.Background(), s, nil)
	if saved != 0 || err != nil {
		t.Fatalf("got %d/%v", saved, err)
	}
}

type rateRecorder struct {
	written []provider.ExchangeRate
}

func (s *rateRecorder) UpsertRate(ctx context.Context, r provider.ExchangeRate) error {
	s.written = append(s.written, r)
	return nil
}

func TestSaveRates(t *testing.T) {
	s := &rateRecorder{}
	rates := []provider.ExchangeRate{
		{From: "USD", To: "CNY", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Rate: decimal.RequireFromString("7.1")},
		{From: "USD", To: "CNY", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Rate: decimal.RequireFromString("7.1")},
	}
	saved, err := SaveRates(context.Background(), s, rates)
	if err != nil {
		t.Fatal(err)
	}
	if saved != 2 || len(s.written) != 2 {
		t.Fatalf("saved %d written %d", saved, len(s.written))
	}
}
