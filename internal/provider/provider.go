package provider

import (
    "context"
    "time"

    "github.com/shopspring/decimal"
)

// SecurityID identifies a security by its canonical ticker and
// exchange operating MIC (e.g. {"600000", "XSHG"}).
type SecurityID struct {
    Ticker   string `json:"ticker"`
    Exchange string `json:"exchange"`
}

// Quote is a point-in-time market observation. It is ephemeral: built per
// request and never persisted as-is. Price is only trustworthy when it is
// strictly positive; a quote that fails that check is never surfaced.
type Quote struct {
    Symbol         string          `json:"symbol"`
    Exchange       string          `json:"exchange"`
    Name           string          `json:"name"`
    Price          decimal.Decimal `json:"price"`
    ChangeAbsolute decimal.Decimal `json:"change_absolute"`
    ChangePercent  decimal.Decimal `json:"change_percent"`
    Volume         int64           `json:"volume"`
    Turnover       decimal.Decimal `json:"turnover"`
    MarketCap      decimal.Decimal `json:"market_cap"`
}

// PricePoint is one calendar day's close for one security, in the currency
// of its exchange. Uniquely identified by (Symbol, Exchange, Date).
type PricePoint struct {
    Symbol   string          `json:"symbol"`
    Exchange string          `json:"exchange"`
    Date     time.Time       `json:"date"`
    Price    decimal.Decimal `json:"price"`
    Currency string          `json:"currency"`
}

// ExchangeRate is the convertibility between two currencies on a date.
type ExchangeRate struct {
    From string          `json:"from"`
    To   string          `json:"to"`
    Date time.Time       `json:"date"`
    Rate decimal.Decimal `json:"rate"`
}

// SecurityInfo is a search/lookup result for a security.
type SecurityInfo struct {
    Ticker   string `json:"ticker"`
    Name     string `json:"name"`
    Exchange string `json:"exchange"`
    Country  string `json:"country"`
}

// QuoteProvider fetches realtime and historical security prices.
//
// Absence is modeled as (nil, nil) for single lookups and as an omitted map
// key for batch lookups: a symbol the upstream has no data for is a normal
// outcome, not an error. Batch and range operations return partial results;
// per-item failures never abort the whole call.
type QuoteProvider interface {
    Name() string
    FetchQuote(ctx context.Context, id SecurityID) (*Quote, error)
    FetchBatchQuotes(ctx context.Context, ids []SecurityID) (map[SecurityID]Quote, error)
    FetchPrice(ctx context.Context, id SecurityID, date time.Time) (*PricePoint, error)
    FetchPriceHistory(ctx context.Context, id SecurityID, start, end time.Time) ([]PricePoint, error)
}

// FXProvider fetches currency exchange rates.
type FXProvider interface {
    Name() string
    FetchExchangeRate(ctx context.Context, from, to string, date time.Time) (*ExchangeRate, error)
    FetchExchangeRateRange(ctx context.Context, from, to string, start, end time.Time) ([]ExchangeRate, error)
}

// Searcher finds securities by free-text query.
type Searcher interface {
    SearchSecurities(ctx context.Context, query, countryCode, exchange string) ([]SecurityInfo, error)
}

// Day truncates t to its calendar day in UTC. All PricePoint and
// ExchangeRate dates carry no time component.
func Day(t time.Time) time.Time {
    return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
