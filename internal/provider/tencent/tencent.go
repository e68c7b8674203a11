// Package tencent fetches security prices and FX rates from the Tencent
// finance endpoints. The upstream is free but undocumented: responses are
// JS variable assignments over tilde-delimited text (realtime) or JSON
// embedded in a text wrapper (historical), and it silently omits symbols it
// has no data for. Everything here is written around partial results being
// the normal case.
package tencent

import (
    "context"
    "encoding/json"
    "fmt"
    "log/slog"
    "math/rand"
    "net/url"
    "sort"
    "strconv"
    "strings"
    "sync"
    "time"

    "golang.org/x/sync/errgroup"

    "marketdata/internal/provider"
    "marketdata/internal/symbol"
)

// probeSymbol is a liquid security used for health checks.
const probeSymbol = "sz000001"

type Config struct {
    Name      string
    QuoteURL  string // realtime quote endpoint base
    KlineURL  string // historical kline endpoint
    SearchURL string // security search endpoint
    // MaxBatchSize caps symbols per combined realtime request. The upstream
    // degrades results beyond 100; leave at the default unless it changes.
    MaxBatchSize int
    // MaxConcurrency limits concurrent batch groups and year fetches.
    MaxConcurrency int
    // MaxRetries is the number of transport retries per GET.
    MaxRetries    int
    RetryInterval time.Duration
}

type Provider struct {
    cfg    Config
    client HTTPClient
    logger *slog.Logger
}

func New(cfg Config, hc HTTPClient, logger *slog.Logger) *Provider {
    if cfg.Name == "" { cfg.Name = "Tencent" }
    if cfg.QuoteURL == "" { cfg.QuoteURL = "http://qt.gtimg.cn" }
    if cfg.KlineURL == "" { cfg.KlineURL = "http://web.ifzq.gtimg.cn/appstock/app/kline/kline" }
    if cfg.SearchURL == "" { cfg.SearchURL = "https://proxy.finance.qq.com/cgi/cgi-bin/smartbox/search" }
    if cfg.MaxBatchSize <= 0 { cfg.MaxBatchSize = 100 }
    if cfg.MaxConcurrency <= 0 { cfg.MaxConcurrency = 2 }
    if cfg.MaxRetries <= 0 { cfg.MaxRetries = 2 }
    if cfg.RetryInterval <= 0 { cfg.RetryInterval = 50 * time.Millisecond }
    if logger == nil { logger = slog.Default() }
    return &Provider{cfg: cfg, client: hc, logger: logger}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) quoteURL(syms ...string) string {
    return p.cfg.QuoteURL + "/q=" + strings.Join(syms, ",")
}

// Healthy issues one realtime probe and reports whether the upstream
// answered with a non-empty body.
func (p *Provider) Healthy(ctx context.Context) bool {
    body, err := p.get(ctx, p.quoteURL(probeSymbol))
    return err == nil && len(body) > 0
}

// FetchQuote returns the realtime quote for one security, or (nil, nil)
// when the upstream has no data for it. A quote whose price field is
// missing, non-numeric or not strictly positive is treated as no data.
func (p *Provider) FetchQuote(ctx context.Context, id provider.SecurityID) (*provider.Quote, error) {
    sym := symbol.Encode(id.Ticker, id.Exchange)
    return p.fetchSingle(ctx, sym)
}

func (p *Provider) fetchSingle(ctx context.Context, sym string) (*provider.Quote, error) {
    u := p.newUnit("quote", sym)
    u.to(stateInFlight)
    body, err := p.get(ctx, p.quoteURL(sym))
    if err != nil {
        u.to(stateFailed, "err", err)
        return nil, err
    }
    q, found := ParseQuote(string(body), sym)
    if !found {
        u.to(stateDegraded, "reason", "no assignment")
        return nil, nil
    }
    if !q.Price.IsPositive() {
        u.to(stateDegraded, "err", &provider.InvalidValueError{Symbol: sym, Reason: "non-positive price"})
        return nil, nil
    }
    q.Symbol, q.Exchange, _ = symbol.Decode(sym)
    u.to(stateParsed)
    return &q, nil
}

// FetchBatchQuotes fetches realtime quotes for many securities. Symbols are
// partitioned into groups of at most MaxBatchSize per combined request; a
// group whose combined request fails on transport falls back to one request
// per symbol, collecting whatever subset succeeds. One symbol's failure
// never aborts the batch, so the returned map may be smaller than the
// input and the error is always nil.
func (p *Provider) FetchBatchQuotes(ctx context.Context, ids []provider.SecurityID) (map[provider.SecurityID]provider.Quote, error) {
    idBySym := make(map[string]provider.SecurityID, len(ids))
    syms := make([]string, 0, len(ids))
    for _, id := range ids {
        sym := symbol.Encode(id.Ticker, id.Exchange)
        if _, dup := idBySym[sym]; dup { continue }
        idBySym[sym] = id
        syms = append(syms, sym)
    }
    if len(syms) == 0 {
        return map[provider.SecurityID]provider.Quote{}, nil
    }

    out := make(map[provider.SecurityID]provider.Quote, len(syms))
    var mu sync.Mutex
    g, gctx := errgroup.WithContext(ctx)
    g.SetLimit(p.cfg.MaxConcurrency)
    for _, group := range chunkSymbols(syms, p.cfg.MaxBatchSize) {
        group := group
        g.Go(func() error {
            p.fetchGroup(gctx, group, idBySym, &mu, out)
            return nil
        })
    }
    _ = g.Wait()
    return out, nil
}

func (p *Provider) fetchGroup(ctx context.Context, group []string, idBySym map[string]provider.SecurityID, mu *sync.Mutex, out map[provider.SecurityID]provider.Quote) {
    u := p.newUnit("batch", strings.Join(group[:min(len(group), 3)], ",")+"...")
    u.to(stateInFlight, "size", len(group))
    body, err := p.get(ctx, p.quoteURL(group...))
    if err != nil {
        // Combined request failed: degrade to one request per symbol so a
        // single bad group member cannot take down the rest.
        u.to(stateDegraded, "err", err, "fallback", "per-symbol")
        for _, sym := range group {
            q, ferr := p.fetchSingle(ctx, sym)
            if ferr != nil {
                p.logger.Warn("fallback fetch failed", "symbol", sym, "err", ferr)
                continue
            }
            if q == nil { continue }
            mu.Lock()
            out[idBySym[sym]] = *q
            mu.Unlock()
        }
        return
    }

    text := string(body)
    matched := 0
    for _, sym := range group {
        q, found := ParseQuote(text, sym)
        if !found || !q.Price.IsPositive() { continue }
        q.Symbol, q.Exchange, _ = symbol.Decode(sym)
        mu.Lock()
        out[idBySym[sym]] = q
        mu.Unlock()
        matched++
    }
    if matched < len(group) {
        u.to(stateDegraded, "requested", len(group), "matched", matched)
    } else {
        u.to(stateParsed, "matched", matched)
    }
}

// FetchPrice returns the closing price for one security on one day. Dates
// strictly in the past always go through the historical path, which is
// authoritative for closed days; only the current day may be answered from
// the realtime quote.
func (p *Provider) FetchPrice(ctx context.Context, id provider.SecurityID, date time.Time) (*provider.PricePoint, error) {
    day := provider.Day(date)
    if day.Before(provider.Day(time.Now())) {
        pts, err := p.FetchPriceHistory(ctx, id, day, day)
        if err != nil { return nil, err }
        if len(pts) == 0 { return nil, nil }
        return &pts[0], nil
    }
    q, err := p.FetchQuote(ctx, id)
    if err != nil || q == nil { return nil, err }
    return &provider.PricePoint{
        Symbol:   q.Symbol,
        Exchange: q.Exchange,
        Date:     day,
        Price:    q.Price,
        Currency: symbol.Currency(q.Exchange),
    }, nil
}

// FetchPriceHistory returns daily closes in [start, end] inclusive, sorted
// ascending. The upstream takes whole calendar years only, so the range is
// decomposed into one request per year, concatenated, deduplicated by day
// and trimmed to the window. A failed year contributes zero points rather
// than aborting the range; points already fetched survive cancellation.
func (p *Provider) FetchPriceHistory(ctx context.Context, id provider.SecurityID, start, end time.Time) ([]provider.PricePoint, error) {
    start, end = provider.Day(start), provider.Day(end)
    if end.Before(start) { return nil, nil }

    sym := symbol.Encode(id.Ticker, id.Exchange)
    ticker, mic, _ := symbol.Decode(sym)
    currency := symbol.Currency(mic)

    byDate := make(map[time.Time]dayClose)
    var mu sync.Mutex
    g, gctx := errgroup.WithContext(ctx)
    g.SetLimit(p.cfg.MaxConcurrency)
    for year := start.Year(); year <= end.Year(); year++ {
        year := year
        g.Go(func() error {
            pts := p.fetchYear(gctx, sym, year)
            mu.Lock()
            for _, pt := range pts { byDate[pt.date] = pt }
            mu.Unlock()
            return nil
        })
    }
    _ = g.Wait()

    out := make([]provider.PricePoint, 0, len(byDate))
    for date, pt := range byDate {
        if date.Before(start) || date.After(end) { continue }
        out = append(out, provider.PricePoint{
            Symbol:   ticker,
            Exchange: mic,
            Date:     date,
            Price:    pt.close,
            Currency: currency,
        })
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
    return out, nil
}

func (p *Provider) fetchYear(ctx context.Context, sym string, year int) []dayClose {
    u := p.newUnit("history", fmt.Sprintf("%s/%d", sym, year))
    u.to(stateInFlight)
    q := url.Values{}
    q.Set("_var", fmt.Sprintf("kline_day%d", year))
    q.Set("param", fmt.Sprintf("%s,day,%d-01-01,%d-12-31,640", sym, year, year))
    q.Set("r", strconv.FormatFloat(rand.Float64(), 'f', -1, 64))
    body, err := p.get(ctx, p.cfg.KlineURL+"?"+q.Encode())
    if err != nil {
        u.to(stateFailed, "err", err)
        return nil
    }
    pts, dropped := ParseHistory(body, sym)
    if dropped > 0 {
        p.logger.Debug("dropped invalid history records", "symbol", sym, "year", year, "dropped", dropped)
    }
    if len(pts) == 0 {
        u.to(stateDegraded, "reason", "no records")
    } else {
        u.to(stateParsed, "points", len(pts))
    }
    return pts
}

// FetchExchangeRate returns the rate for one currency pair, or (nil, nil)
// when the upstream reports the pair stale or unavailable. Pairs outside
// the allow-list are rejected before any network call.
func (p *Provider) FetchExchangeRate(ctx context.Context, from, to string, date time.Time) (*provider.ExchangeRate, error) {
    pairSym, ok := PairSymbol(from, to)
    if !ok {
        return nil, &provider.UnsupportedPairError{From: from, To: to}
    }
    u := p.newUnit("fx", pairSym)
    u.to(stateInFlight)
    body, err := p.get(ctx, p.quoteURL(pairSym))
    if err != nil {
        u.to(stateFailed, "err", err)
        return nil, err
    }
    rate, ok := ParseFXRate(string(body), pairSym)
    if !ok {
        u.to(stateDegraded, "err", &provider.InvalidValueError{Symbol: pairSym, Reason: "status gate or non-positive rate"})
        return nil, nil
    }
    u.to(stateParsed)
    return &provider.ExchangeRate{From: from, To: to, Date: provider.Day(date), Rate: rate}, nil
}

// FetchExchangeRateRange returns one rate per day in [start, end]. The
// upstream quotes FX spot only, so a single fetch covers the whole range
// and the spot rate is stamped on every day in the window.
func (p *Provider) FetchExchangeRateRange(ctx context.Context, from, to string, start, end time.Time) ([]provider.ExchangeRate, error) {
    start, end = provider.Day(start), provider.Day(end)
    if end.Before(start) { return nil, nil }
    spot, err := p.FetchExchangeRate(ctx, from, to, start)
    if err != nil || spot == nil { return nil, err }
    var out []provider.ExchangeRate
    for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
        out = append(out, provider.ExchangeRate{From: from, To: to, Date: d, Rate: spot.Rate})
    }
    return out, nil
}

// SearchSecurities queries the upstream's search box and decodes the
// results through the symbol codec, optionally filtered by country code
// and/or exchange MIC.
func (p *Provider) SearchSecurities(ctx context.Context, query, countryCode, exchangeMIC string) ([]provider.SecurityInfo, error) {
    q := url.Values{}
    q.Set("stockFlag", "1")
    q.Set("fundFlag", "0")
    q.Set("app", "official_website")
    q.Set("query", query)
    body, err := p.get(ctx, p.cfg.SearchURL+"?"+q.Encode())
    if err != nil { return nil, err }

    var resp struct {
        Stock []struct {
            Code string `json:"code"`
            Name string `json:"name"`
        } `json:"stock"`
    }
    if err := json.Unmarshal(body, &resp); err != nil {
        return nil, &provider.ParseError{Symbol: query, Fragment: truncate(body), Err: err}
    }

    out := make([]provider.SecurityInfo, 0, len(resp.Stock))
    for _, s := range resp.Stock {
        ticker, mic, country := symbol.Decode(s.Code)
        if exchangeMIC != "" && mic != exchangeMIC { continue }
        if countryCode != "" && country != countryCode { continue }
        out = append(out, provider.SecurityInfo{
            Ticker:   ticker,
            Name:     s.Name,
            Exchange: mic,
            Country:  country,
        })
    }
    return out, nil
}

func chunkSymbols(in []string, size int) [][]string {
    if size <= 0 || len(in) <= size { return [][]string{in} }
    out := make([][]string, 0, (len(in)+size-1)/size)
    for i := 0; i < len(in); i += size {
        j := i + size
        if j > len(in) { j = len(in) }
        out = append(out, in[i:j])
    }
    return out
}

func truncate(b []byte) string {
    const max = 200
    if len(b) <= max { return string(b) }
    return string(b[:max]) + "..."
}
