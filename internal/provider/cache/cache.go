package cache

import (
    "context"
    "sync"
    "time"

    "golang.org/x/sync/singleflight"

    "marketdata/internal/provider"
)

// entry stores one cached quote with expiry.
type entry struct {
    expiresAt time.Time
    quote     provider.Quote
}

// Provider caches realtime quotes per security for a TTL. Batch lookups
// request only the missing securities from the underlying provider and
// combine cached + fresh results. Historical lookups pass through: the
// historical path is authoritative for closed days and must not be served
// from a realtime-tuned cache.
type Provider struct {
    P        provider.QuoteProvider
    TTL      time.Duration
    MaxItems int

    mu    sync.RWMutex
    items map[provider.SecurityID]entry

    // coalesce concurrent single-quote refreshes per security
    sf singleflight.Group
}

func (c *Provider) Name() string { return c.P.Name() }

func (c *Provider) FetchQuote(ctx context.Context, id provider.SecurityID) (*provider.Quote, error) {
    if c.TTL <= 0 {
        return c.P.FetchQuote(ctx, id)
    }
    now := time.Now()
    c.mu.RLock()
    e, ok := c.items[id]
    c.mu.RUnlock()
    if ok && now.Before(e.expiresAt) {
        q := e.quote
        return &q, nil
    }

    v, err, _ := c.sf.Do(id.Exchange+":"+id.Ticker, func() (any, error) {
        q, err := c.P.FetchQuote(ctx, id)
        if err != nil { return nil, err }
        if q != nil {
            c.put(id, *q, time.Now().Add(c.TTL))
        }
        return q, nil
    })
    if err != nil { return nil, err }
    q, _ := v.(*provider.Quote)
    return q, nil
}

func (c *Provider) FetchBatchQuotes(ctx context.Context, ids []provider.SecurityID) (map[provider.SecurityID]provider.Quote, error) {
    if c.TTL <= 0 {
        return c.P.FetchBatchQuotes(ctx, ids)
    }
    now := time.Now()
    out := make(map[provider.SecurityID]provider.Quote, len(ids))
    missing := make([]provider.SecurityID, 0, len(ids))
    seen := make(map[provider.SecurityID]struct{}, len(ids))

    c.mu.RLock()
    for _, id := range ids {
        if _, dup := seen[id]; dup { continue }
        seen[id] = struct{}{}
        if e, ok := c.items[id]; ok && now.Before(e.expiresAt) {
            out[id] = e.quote
            continue
        }
        missing = append(missing, id)
    }
    c.mu.RUnlock()

    if len(missing) == 0 {
        return out, nil
    }

    fresh, err := c.P.FetchBatchQuotes(ctx, missing)
    if err != nil {
        // Partial service beats no service: surface whatever was cached.
        if len(out) > 0 { return out, nil }
        return nil, err
    }

    expiry := time.Now().Add(c.TTL)
    for id, q := range fresh {
        c.put(id, q, expiry)
        out[id] = q
    }
    return out, nil
}

func (c *Provider) FetchPrice(ctx context.Context, id provider.SecurityID, date time.Time) (*provider.PricePoint, error) {
    return c.P.FetchPrice(ctx, id, date)
}

func (c *Provider) FetchPriceHistory(ctx context.Context, id provider.SecurityID, start, end time.Time) ([]provider.PricePoint, error) {
    return c.P.FetchPriceHistory(ctx, id, start, end)
}

func (c *Provider) put(id provider.SecurityID, q provider.Quote, expiry time.Time) {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.items == nil {
        c.items = make(map[provider.SecurityID]entry)
    }
    c.items[id] = entry{expiresAt: expiry, quote: q}
    if c.MaxItems > 0 && len(c.items) > c.MaxItems {
        // best-effort cap: remove expired first, then arbitrary
        now := time.Now()
        for k, v := range c.items {
            if now.After(v.expiresAt) {
                delete(c.items, k)
            }
            if len(c.items) <= c.MaxItems { return }
        }
        for k := range c.items {
            if len(c.items) <= c.MaxItems { return }
            delete(c.items, k)
        }
    }
}
