package tencent

import (
    "context"
    "fmt"
    "io"
    "math/rand"
    "net/http"
    "time"
)

// HTTPClient describes the transport the provider issues its GETs through.
// *httpx.Client satisfies it.
//
//go:generate mockgen -package=tencent -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
    Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// maxBodyBytes caps how much of an upstream response is read. The realtime
// endpoint returns a few hundred bytes per symbol; a year of kline data
// stays well under this.
const maxBodyBytes = 4 << 20

// get issues one GET with the provider's bounded retry policy: up to
// cfg.MaxRetries retries with exponential backoff and jitter, applied
// uniformly regardless of which parser consumes the response. A non-2xx
// status counts as a transport failure.
func (p *Provider) get(ctx context.Context, url string) ([]byte, error) {
    interval := p.cfg.RetryInterval
    var lastErr error
    for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
        if attempt > 0 {
            // jitter up to +50% of the current interval
            wait := interval + time.Duration(rand.Int63n(int64(interval)/2+1))
            timer := time.NewTimer(wait)
            select {
            case <-ctx.Done():
                timer.Stop()
                return nil, ctx.Err()
            case <-timer.C:
            }
            interval *= 2
        }

        req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
        if err != nil { return nil, err }
        resp, err := p.client.Do(ctx, req)
        if err != nil {
            lastErr = err
            continue
        }
        body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
        resp.Body.Close()
        if err != nil {
            lastErr = err
            continue
        }
        if resp.StatusCode < 200 || resp.StatusCode >= 300 {
            lastErr = fmt.Errorf("GET %s -> %d", url, resp.StatusCode)
            continue
        }
        return body, nil
    }
    return nil, lastErr
}
