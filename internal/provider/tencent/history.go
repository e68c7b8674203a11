package tencent

import (
    "bytes"
    "encoding/json"
    "time"

    "github.com/shopspring/decimal"
)

// dayClose is one decoded daily record from the kline endpoint.
type dayClose struct {
    date  time.Time
    close decimal.Decimal
}

// ParseHistory decodes the historical kline response for one (symbol, year)
// request. The endpoint wraps one JSON object in arbitrary text (a JS
// variable assignment); the first balanced {...} span is located and parsed,
// then daily records are read from data -> <symbol> -> "day", each shaped
// [date, open, close, high, low, volume].
//
// Any locate or decode failure yields an empty result: the historical
// endpoint degrades now and then and that is not a fault. Records with a
// close <= 0 are dropped and counted; a malformed date skips only that
// record.
func ParseHistory(body []byte, providerSymbol string) (points []dayClose, dropped int) {
    span, ok := jsonSpan(body)
    if !ok { return nil, 0 }

    var payload struct {
        Data map[string]struct {
            Day [][]json.RawMessage `json:"day"`
        } `json:"data"`
    }
    if err := json.Unmarshal(span, &payload); err != nil { return nil, 0 }

    days := payload.Data[providerSymbol].Day
    for _, rec := range days {
        if len(rec) < 3 { dropped++; continue }
        close, ok := rawDecimal(rec[2])
        if !ok || !close.IsPositive() {
            dropped++
            continue
        }
        var dateStr string
        if err := json.Unmarshal(rec[0], &dateStr); err != nil { dropped++; continue }
        date, err := time.Parse("2006-01-02", dateStr)
        if err != nil { dropped++; continue }
        points = append(points, dayClose{date: date.UTC(), close: close})
    }
    return points, dropped
}

// jsonSpan returns the first balanced {...} span in b, honoring JSON string
// and escape rules so braces inside strings do not unbalance the scan.
func jsonSpan(b []byte) ([]byte, bool) {
    start := bytes.IndexByte(b, '{')
    if start < 0 { return nil, false }
    depth := 0
    inString := false
    escaped := false
    for i := start; i < len(b); i++ {
        c := b[i]
        if inString {
            switch {
            case escaped:
                escaped = false
            case c == '\\':
                escaped = true
            case c == '"':
                inString = false
            }
            continue
        }
        switch c {
        case '"':
            inString = true
        case '{':
            depth++
        case '}':
            depth--
            if depth == 0 { return b[start : i+1], true }
        }
    }
    return nil, false
}

// rawDecimal parses a JSON value that may be either a number or a numeric
// string; the kline endpoint uses both across fields.
func rawDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
    s := string(bytes.TrimSpace(raw))
    if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
        s = s[1 : len(s)-1]
    }
    if s == "" || s == "null" { return decimal.Decimal{}, false }
    d, err := decimal.NewFromString(s)
    if err != nil { return decimal.Decimal{}, false }
    return d, true
}
