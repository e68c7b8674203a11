package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
)

type Server struct {
    Port              string `json:"port"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Tencent struct {
    Enabled               bool   `json:"enabled"`
    QuoteEndpoint         string `json:"quote_endpoint"`
    KlineEndpoint         string `json:"kline_endpoint"`
    SearchEndpoint        string `json:"search_endpoint"`
    MaxBatchSize          int    `json:"max_batch_size"`
    MaxConcurrency        int    `json:"max_concurrency"`
    MaxRetries            int    `json:"max_retries"`
    RetryIntervalMs       int    `json:"retry_interval_ms"`
    MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
    MinRequestIntervalSec int    `json:"min_request_interval_sec"`
    Burst                 int    `json:"burst"`
    CacheTTLSeconds       int    `json:"cache_ttl_sec"`
    CacheMaxItems         int    `json:"cache_max_items"`
}

type Database struct {
    // DSN is a Postgres connection string; empty disables persistence.
    DSN string `json:"dsn"`
}

type Config struct {
    Server   Server   `json:"server"`
    Tencent  Tencent  `json:"tencent"`
    Database Database `json:"database"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 10},
        Tencent: Tencent{
            Enabled:         true,
            MaxBatchSize:    100,
            MaxConcurrency:  2,
            MaxRetries:      2,
            RetryIntervalMs: 50,
            CacheTTLSeconds: 3,
            CacheMaxItems:   10000,
        },
    }
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }
    if v := os.Getenv("DATABASE_DSN"); v != "" { cfg.Database.DSN = v }
    if v := os.Getenv("TENCENT_QUOTE_ENDPOINT"); v != "" { cfg.Tencent.QuoteEndpoint = v }
    if v := os.Getenv("TENCENT_KLINE_ENDPOINT"); v != "" { cfg.Tencent.KlineEndpoint = v }
    if v := os.Getenv("TENCENT_SEARCH_ENDPOINT"); v != "" { cfg.Tencent.SearchEndpoint = v }
    if v := os.Getenv("TENCENT_MAX_BATCH_SIZE"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Tencent.MaxBatchSize = x }
    }
    if v := os.Getenv("TENCENT_MAX_CONCURRENCY"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Tencent.MaxConcurrency = x }
    }
    if v := os.Getenv("TENCENT_MAX_RETRIES"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Tencent.MaxRetries = x }
    }
    if v := os.Getenv("TENCENT_RETRY_INTERVAL_MS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Tencent.RetryIntervalMs = x }
    }
    if v := os.Getenv("TENCENT_MAX_RPM"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Tencent.MaxRequestsPerMinute = x }
    }
    if v := os.Getenv("TENCENT_MIN_INTERVAL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Tencent.MinRequestIntervalSec = x }
    }
    if v := os.Getenv("TENCENT_BURST"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Tencent.Burst = x }
    }
    if v := os.Getenv("TENCENT_CACHE_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Tencent.CacheTTLSeconds = x }
    }
    if v := os.Getenv("TENCENT_CACHE_MAX_ITEMS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Tencent.CacheMaxItems = x }
    }
}
