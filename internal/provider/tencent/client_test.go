package tencent

import (
    "context"
    "errors"
    "io"
    "log/slog"
    "net/http"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/require"
    "go.uber.org/mock/gomock"
)

func testProvider(t *testing.T, hc HTTPClient) *Provider {
    t.Helper()
    return New(Config{
        MaxRetries:    2,
        RetryInterval: time.Millisecond,
    }, hc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func okResponse(body string) *http.Response {
    return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}
}

func TestGetRetriesTransportErrors(t *testing.T) {
    ctrl := gomock.NewController(t)
    hc := NewMockHTTPClient(ctrl)
    p := testProvider(t, hc)

    gomock.InOrder(
        hc.EXPECT().Do(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset")),
        hc.EXPECT().Do(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset")),
        hc.EXPECT().Do(gomock.Any(), gomock.Any()).Return(okResponse("ok"), nil),
    )

    body, err := p.get(context.Background(), "http://example.test/q=sz000001")
    require.NoError(t, err)
    require.Equal(t, "ok", string(body))
}

func TestGetExhaustsRetries(t *testing.T) {
    ctrl := gomock.NewController(t)
    hc := NewMockHTTPClient(ctrl)
    p := testProvider(t, hc)

    // 1 initial attempt + MaxRetries retries, then the last error surfaces.
    hc.EXPECT().Do(gomock.Any(), gomock.Any()).
        Return(nil, errors.New("connection reset")).Times(3)

    _, err := p.get(context.Background(), "http://example.test/q=sz000001")
    require.Error(t, err)
    require.Contains(t, err.Error(), "connection reset")
}

func TestGetRetriesNon2xx(t *testing.T) {
    ctrl := gomock.NewController(t)
    hc := NewMockHTTPClient(ctrl)
    p := testProvider(t, hc)

    gomock.InOrder(
        hc.EXPECT().Do(gomock.Any(), gomock.Any()).Return(&http.Response{
            StatusCode: http.StatusBadGateway,
            Body:       io.NopCloser(strings.NewReader("oops")),
        }, nil),
        hc.EXPECT().Do(gomock.Any(), gomock.Any()).Return(okResponse("recovered"), nil),
    )

    body, err := p.get(context.Background(), "http://example.test/q=sz000001")
    require.NoError(t, err)
    require.Equal(t, "recovered", string(body))
}

func TestGetStopsOnCanceledContext(t *testing.T) {
    ctrl := gomock.NewController(t)
    hc := NewMockHTTPClient(ctrl)
    p := New(Config{
        MaxRetries:    2,
        RetryInterval: time.Hour, // backoff must never be slept through here
    }, hc, slog.New(slog.NewTextHandler(io.Discard, nil)))

    ctx, cancel := context.WithCancel(context.Background())
    hc.EXPECT().Do(gomock.Any(), gomock.Any()).
        DoAndReturn(func(context.Context, *http.Request) (*http.Response, error) {
            cancel()
            return nil, errors.New("connection reset")
        })

    _, err := p.get(ctx, "http://example.test/q=sz000001")
    require.ErrorIs(t, err, context.Canceled)
}
