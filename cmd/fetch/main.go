package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "log"
    "log/slog"
    "os"
    "time"

    "github.com/joho/godotenv"

    "marketdata/internal/config"
    "marketdata/internal/httpx"
    "marketdata/internal/provider"
    "marketdata/internal/provider/tencent"
    "marketdata/internal/symbol"
)

// One-shot fetcher for inspecting upstream data without the server, e.g.
//
//	fetch -ticker 600000 -exchange XSHG
//	fetch -ticker 000001 -exchange XSHE -start 2024-01-01 -end 2024-03-31
//	fetch -fx USD:CNY
func main() {
    _ = godotenv.Load()

    var ticker, exchange, startStr, endStr, fxPair, query string
    var timeout int
    var configPath string

    flag.StringVar(&ticker, "ticker", "", "security ticker (e.g. 600000 or 688110.SH)")
    flag.StringVar(&exchange, "exchange", "", "exchange MIC (XSHG, XSHE, XHKG)")
    flag.StringVar(&startStr, "start", "", "history start date YYYY-MM-DD")
    flag.StringVar(&endStr, "end", "", "history end date YYYY-MM-DD")
    flag.StringVar(&fxPair, "fx", "", "currency pair FROM:TO (e.g. USD:CNY)")
    flag.StringVar(&query, "search", "", "free-text security search")
    flag.IntVar(&timeout, "timeout", 15, "request timeout seconds")
    flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
    flag.Parse()

    cfg, err := config.Load(configPath)
    if err != nil { log.Fatalf("config: %v", err) }
    if timeout != 0 { cfg.Server.RequestTimeoutSec = timeout }

    logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

    p := tencent.New(tencent.Config{
        QuoteURL:       cfg.Tencent.QuoteEndpoint,
        KlineURL:       cfg.Tencent.KlineEndpoint,
        SearchURL:      cfg.Tencent.SearchEndpoint,
        MaxBatchSize:   cfg.Tencent.MaxBatchSize,
        MaxConcurrency: cfg.Tencent.MaxConcurrency,
        MaxRetries:     cfg.Tencent.MaxRetries,
        RetryInterval:  time.Duration(cfg.Tencent.RetryIntervalMs) * time.Millisecond,
    }, httpClient, logger)

    ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
    defer cancel()

    switch {
    case query != "":
        results, err := p.SearchSecurities(ctx, query, "", exchange)
        if err != nil { log.Fatalf("search: %v", err) }
        dump(results)

    case fxPair != "":
        var from, to string
        if _, err := fmt.Sscanf(fxPair, "%3s:%3s", &from, &to); err != nil {
            log.Fatalf("bad -fx value %q, want FROM:TO", fxPair)
        }
        if startStr != "" && endStr != "" {
            start, end := mustDate(startStr), mustDate(endStr)
            rates, err := p.FetchExchangeRateRange(ctx, from, to, start, end)
            if err != nil { log.Fatalf("fx range: %v", err) }
            dump(rates)
            return
        }
        rate, err := p.FetchExchangeRate(ctx, from, to, time.Now())
        if err != nil { log.Fatalf("fx: %v", err) }
        if rate == nil { log.Fatal("no data") }
        dump(rate)

    case ticker != "" && startStr != "" && endStr != "":
        start, end := mustDate(startStr), mustDate(endStr)
        points, err := p.FetchPriceHistory(ctx, provider.SecurityID{Ticker: ticker, Exchange: exchange}, start, end)
        if err != nil { log.Fatalf("history: %v", err) }
        log.Printf("%d price points", len(points))
        dump(points)

    case ticker != "":
        q, err := p.FetchQuote(ctx, provider.SecurityID{Ticker: ticker, Exchange: exchange})
        if err != nil { log.Fatalf("quote: %v", err) }
        if q == nil {
            log.Fatalf("no data for %s", symbol.Encode(ticker, exchange))
        }
        dump(q)

    default:
        flag.Usage()
        os.Exit(2)
    }
}

func mustDate(s string) time.Time {
    d, err := time.Parse("2006-01-02", s)
    if err != nil { log.Fatalf("bad date %q: %v", s, err) }
    return d
}

func dump(v any) {
    b, _ := json.MarshalIndent(v, "", "  ")
    fmt.Println(string(b))
}
