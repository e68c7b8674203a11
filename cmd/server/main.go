package main

import (
    "context"
    "encoding/json"
    "log"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "strings"
    "syscall"
    "time"

    "github.com/joho/godotenv"

    "marketdata/internal/config"
    "marketdata/internal/httpx"
    "marketdata/internal/provider"
    "marketdata/internal/provider/cache"
    "marketdata/internal/provider/ratelimit"
    "marketdata/internal/provider/tencent"
    "marketdata/internal/store"
    "marketdata/internal/symbol"
)

func main() {
    _ = godotenv.Load()

    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil { log.Fatalf("config: %v", err) }
    if !cfg.Tencent.Enabled {
        log.Fatalf("%v; set tencent.enabled in config.json", provider.ErrNotConfigured)
    }

    logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
    httpClient.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

    tc := tencent.New(tencent.Config{
        QuoteURL:       cfg.Tencent.QuoteEndpoint,
        KlineURL:       cfg.Tencent.KlineEndpoint,
        SearchURL:      cfg.Tencent.SearchEndpoint,
        MaxBatchSize:   cfg.Tencent.MaxBatchSize,
        MaxConcurrency: cfg.Tencent.MaxConcurrency,
        MaxRetries:     cfg.Tencent.MaxRetries,
        RetryInterval:  time.Duration(cfg.Tencent.RetryIntervalMs) * time.Millisecond,
    }, httpClient, logger)

    var quotes provider.QuoteProvider = tc
    // Prefer token bucket with burst if RPM is set, otherwise use min-interval
    if cfg.Tencent.MaxRequestsPerMinute > 0 {
        rate := float64(cfg.Tencent.MaxRequestsPerMinute) / 60.0
        burst := cfg.Tencent.Burst
        if burst <= 0 { burst = 1 }
        quotes = &ratelimit.TokenBucketProvider{P: quotes, TB: ratelimit.NewTokenBucket(rate, burst)}
    } else if cfg.Tencent.MinRequestIntervalSec > 0 {
        interval := time.Duration(cfg.Tencent.MinRequestIntervalSec) * time.Second
        quotes = &ratelimit.MinInterval{P: quotes, Interval: interval}
    }
    if cfg.Tencent.CacheTTLSeconds > 0 {
        quotes = &cache.Provider{P: quotes, TTL: time.Duration(cfg.Tencent.CacheTTLSeconds) * time.Second, MaxItems: cfg.Tencent.CacheMaxItems}
    }
    var fx provider.FXProvider = tc

    var db *store.DB
    if cfg.Database.DSN != "" {
        db, err = store.Open(cfg.Database.DSN)
        if err != nil { log.Fatalf("store: %v", err) }
        log.Println("persistence enabled")
    }

    srv := &server{quotes: quotes, fx: fx, search: tc, db: db}

    mux := http.NewServeMux()
    mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    mux.HandleFunc("/api/quote", srv.handleQuote)
    mux.HandleFunc("/api/quotes", srv.handleBatchQuotes)
    mux.HandleFunc("/api/history", srv.handleHistory)
    mux.HandleFunc("/api/fx", srv.handleFX)
    mux.HandleFunc("/api/fx/range", srv.handleFXRange)
    mux.HandleFunc("/api/search", srv.handleSearch)

    hsrv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           withJSONHeaders(recoverPanic(limitBody(mux))),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      30 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        log.Printf("server listening on :%s", cfg.Server.Port)
        if err := hsrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server: %v", err)
        }
    }()

    // graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = hsrv.Shutdown(shutdownCtx)
}

type server struct {
    quotes provider.QuoteProvider
    fx     provider.FXProvider
    search provider.Searcher
    db     *store.DB
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
    id := provider.SecurityID{
        Ticker:   r.URL.Query().Get("ticker"),
        Exchange: r.URL.Query().Get("exchange"),
    }
    if id.Ticker == "" {
        http.Error(w, "missing ticker", http.StatusBadRequest)
        return
    }
    q, err := s.quotes.FetchQuote(r.Context(), id)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadGateway)
        return
    }
    if q == nil {
        http.Error(w, "no data", http.StatusNotFound)
        return
    }
    writeJSON(w, q)
}

func (s *server) handleBatchQuotes(w http.ResponseWriter, r *http.Request) {
    raw := r.URL.Query().Get("symbols")
    if strings.TrimSpace(raw) == "" {
        http.Error(w, "missing symbols query param", http.StatusBadRequest)
        return
    }
    tokens := splitCSV(raw)
    if len(tokens) > 1000 {
        http.Error(w, "too many symbols (max 1000)", http.StatusBadRequest)
        return
    }
    ids := make([]provider.SecurityID, 0, len(tokens))
    for _, tok := range tokens {
        ticker, mic, _ := symbol.Decode(tok)
        ids = append(ids, provider.SecurityID{Ticker: ticker, Exchange: mic})
    }
    m, err := s.quotes.FetchBatchQuotes(r.Context(), ids)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadGateway)
        return
    }
    out := make([]provider.Quote, 0, len(m))
    for _, q := range m { out = append(out, q) }
    writeJSON(w, struct {
        Quotes []provider.Quote `json:"quotes"`
    }{out})
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
    id := provider.SecurityID{
        Ticker:   r.URL.Query().Get("ticker"),
        Exchange: r.URL.Query().Get("exchange"),
    }
    start, err1 := time.Parse("2006-01-02", r.URL.Query().Get("start"))
    end, err2 := time.Parse("2006-01-02", r.URL.Query().Get("end"))
    if id.Ticker == "" || err1 != nil || err2 != nil {
        http.Error(w, "need ticker, start and end (YYYY-MM-DD)", http.StatusBadRequest)
        return
    }
    points, err := s.quotes.FetchPriceHistory(r.Context(), id, start, end)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadGateway)
        return
    }
    if s.db != nil {
        if saved, err := store.SavePrices(r.Context(), s.db, points); err != nil {
            log.Printf("persist prices: saved %d of %d: %v", saved, len(points), err)
        }
    }
    writeJSON(w, struct {
        Prices []provider.PricePoint `json:"prices"`
    }{points})
}

func (s *server) handleFX(w http.ResponseWriter, r *http.Request) {
    from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
    date := time.Now()
    if v := r.URL.Query().Get("date"); v != "" {
        d, err := time.Parse("2006-01-02", v)
        if err != nil {
            http.Error(w, "bad date", http.StatusBadRequest)
            return
        }
        date = d
    }
    rate, err := s.fx.FetchExchangeRate(r.Context(), from, to, date)
    if err != nil {
        status := http.StatusBadGateway
        if _, ok := err.(*provider.UnsupportedPairError); ok { status = http.StatusBadRequest }
        http.Error(w, err.Error(), status)
        return
    }
    if rate == nil {
        http.Error(w, "no data", http.StatusNotFound)
        return
    }
    writeJSON(w, rate)
}

func (s *server) handleFXRange(w http.ResponseWriter, r *http.Request) {
    from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
    start, err1 := time.Parse("2006-01-02", r.URL.Query().Get("start"))
    end, err2 := time.Parse("2006-01-02", r.URL.Query().Get("end"))
    if err1 != nil || err2 != nil {
        http.Error(w, "need start and end (YYYY-MM-DD)", http.StatusBadRequest)
        return
    }
    rates, err := s.fx.FetchExchangeRateRange(r.Context(), from, to, start, end)
    if err != nil {
        status := http.StatusBadGateway
        if _, ok := err.(*provider.UnsupportedPairError); ok { status = http.StatusBadRequest }
        http.Error(w, err.Error(), status)
        return
    }
    if s.db != nil {
        if saved, err := store.SaveRates(r.Context(), s.db, rates); err != nil {
            log.Printf("persist rates: saved %d of %d: %v", saved, len(rates), err)
        }
    }
    writeJSON(w, struct {
        Rates []provider.ExchangeRate `json:"rates"`
    }{rates})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query().Get("q")
    if strings.TrimSpace(q) == "" {
        http.Error(w, "missing q", http.StatusBadRequest)
        return
    }
    results, err := s.search.SearchSecurities(r.Context(), q, r.URL.Query().Get("country"), r.URL.Query().Get("exchange"))
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadGateway)
        return
    }
    writeJSON(w, struct {
        Results []provider.SecurityInfo `json:"results"`
    }{results})
}

func writeJSON(w http.ResponseWriter, v any) {
    w.WriteHeader(http.StatusOK)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(v)
}

func withJSONHeaders(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json; charset=utf-8")
        next.ServeHTTP(w, r)
    })
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if rec := recover(); rec != nil {
                http.Error(w, "internal server error", http.StatusInternalServerError)
            }
        }()
        next.ServeHTTP(w, r)
    })
}

func limitBody(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
        next.ServeHTTP(w, r)
    })
}

func splitCSV(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" { out = append(out, p) }
    }
    return out
}
