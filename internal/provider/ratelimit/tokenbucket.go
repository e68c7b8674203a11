package ratelimit

import (
    "context"
    "sync"
    "time"

    "marketdata/internal/provider"
)

// TokenBucket provides a stdlib-only token bucket limiter.
// - rate: tokens per second
// - capacity: maximum tokens the bucket can hold (burst)
type TokenBucket struct {
    rate     float64
    capacity float64

    mu     sync.Mutex
    tokens float64
    last   time.Time
}

func NewTokenBucket(tokensPerSecond float64, burst int) *TokenBucket {
    if tokensPerSecond <= 0 { tokensPerSecond = 0.0000001 }
    if burst <= 0 { burst = 1 }
    return &TokenBucket{
        rate:     tokensPerSecond,
        capacity: float64(burst),
        tokens:   float64(burst), // start full to allow an initial burst
        last:     time.Now(),
    }
}

// wait blocks until one token is available or context is canceled.
func (tb *TokenBucket) wait(ctx context.Context) error {
    for {
        tb.mu.Lock()
        now := time.Now()
        // Refill
        elapsed := now.Sub(tb.last).Seconds()
        if elapsed > 0 {
            tb.tokens += elapsed * tb.rate
            if tb.tokens > tb.capacity {
                tb.tokens = tb.capacity
            }
            tb.last = now
        }
        if tb.tokens >= 1 {
            tb.tokens -= 1
            tb.mu.Unlock()
            return nil
        }
        // Need to wait for the remaining fraction
        deficit := 1 - tb.tokens
        tb.mu.Unlock()
        // time needed to accumulate one token
        waitDur := time.Duration(deficit/tb.rate*1e9) * time.Nanosecond
        if waitDur <= 0 { waitDur = time.Millisecond }
        timer := time.NewTimer(waitDur)
        select {
        case <-ctx.Done():
            timer.Stop()
            return ctx.Err()
        case <-timer.C:
        }
    }
}

// TokenBucketProvider wraps a QuoteProvider and gates every upstream
// operation through a shared token bucket. The gate applies per call, not
// per symbol: one batch fetch costs one token regardless of its size.
type TokenBucketProvider struct {
    P  provider.QuoteProvider
    TB *TokenBucket
}

func (t *TokenBucketProvider) Name() string { return t.P.Name() }

func (t *TokenBucketProvider) FetchQuote(ctx context.Context, id provider.SecurityID) (*provider.Quote, error) {
    if err := t.gate(ctx); err != nil { return nil, err }
    return t.P.FetchQuote(ctx, id)
}

func (t *TokenBucketProvider) FetchBatchQuotes(ctx context.Context, ids []provider.SecurityID) (map[provider.SecurityID]provider.Quote, error) {
    if err := t.gate(ctx); err != nil { return nil, err }
    return t.P.FetchBatchQuotes(ctx, ids)
}

func (t *TokenBucketProvider) FetchPrice(ctx context.Context, id provider.SecurityID, date time.Time) (*provider.PricePoint, error) {
    if err := t.gate(ctx); err != nil { return nil, err }
    return t.P.FetchPrice(ctx, id, date)
}

func (t *TokenBucketProvider) FetchPriceHistory(ctx context.Context, id provider.SecurityID, start, end time.Time) ([]provider.PricePoint, error) {
    if err := t.gate(ctx); err != nil { return nil, err }
    return t.P.FetchPriceHistory(ctx, id, start, end)
}

func (t *TokenBucketProvider) gate(ctx context.Context) error {
    if t.TB == nil { return nil }
    return t.TB.wait(ctx)
}
