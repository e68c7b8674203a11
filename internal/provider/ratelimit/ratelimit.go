package ratelimit

import (
    "context"
    "sync"
    "time"

    "marketdata/internal/provider"
)

// MinInterval wraps a QuoteProvider and enforces a minimum time between
// upstream calls. Concurrent calls wait until the interval has elapsed
// since the last call, or return early if the context is canceled.
type MinInterval struct {
    P        provider.QuoteProvider
    Interval time.Duration
    mu       sync.Mutex
    last     time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) FetchQuote(ctx context.Context, id provider.SecurityID) (*provider.Quote, error) {
    if err := m.gate(ctx); err != nil { return nil, err }
    defer m.mark()
    return m.P.FetchQuote(ctx, id)
}

func (m *MinInterval) FetchBatchQuotes(ctx context.Context, ids []provider.SecurityID) (map[provider.SecurityID]provider.Quote, error) {
    if err := m.gate(ctx); err != nil { return nil, err }
    defer m.mark()
    return m.P.FetchBatchQuotes(ctx, ids)
}

func (m *MinInterval) FetchPrice(ctx context.Context, id provider.SecurityID, date time.Time) (*provider.PricePoint, error) {
    if err := m.gate(ctx); err != nil { return nil, err }
    defer m.mark()
    return m.P.FetchPrice(ctx, id, date)
}

func (m *MinInterval) FetchPriceHistory(ctx context.Context, id provider.SecurityID, start, end time.Time) ([]provider.PricePoint, error) {
    if err := m.gate(ctx); err != nil { return nil, err }
    defer m.mark()
    return m.P.FetchPriceHistory(ctx, id, start, end)
}

func (m *MinInterval) gate(ctx context.Context) error {
    if m.Interval <= 0 { return nil }
    // simple gate: ensure at least Interval since last
    m.mu.Lock()
    wait := time.Until(m.last.Add(m.Interval))
    m.mu.Unlock()
    if wait > 0 {
        t := time.NewTimer(wait)
        defer t.Stop()
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-t.C:
        }
    }
    return nil
}

func (m *MinInterval) mark() {
    if m.Interval <= 0 { return }
    m.mu.Lock()
    m.last = time.Now()
    m.mu.Unlock()
}
