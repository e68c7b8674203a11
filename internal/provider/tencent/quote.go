package tencent

import (
    "strconv"
    "strings"

    "github.com/shopspring/decimal"

    "marketdata/internal/provider"
)

// Realtime quote payload field indices. The upstream returns a single
// tilde-delimited line per symbol, e.g.
//
//	v_sz000858="51~五 粮 液~000858~27.78~0.18~0.65~417909~116339~~1054.52";
const (
    quoteFieldName      = 1
    quoteFieldPrice     = 3
    quoteFieldChange    = 4
    quoteFieldChangePct = 5
    quoteFieldVolume    = 6
    quoteFieldTurnover  = 7
    quoteFieldMarketCap = 9
)

// extractAssignment finds the quoted payload assigned to exactly the given
// provider symbol inside a response blob. The blob may contain assignments
// for many symbols; the match is anchored on `_<symbol>="` so that e.g.
// sz000001 never matches sz0000011. The second return is false when no
// assignment for the symbol exists, which is a normal outcome.
func extractAssignment(body, providerSymbol string) (string, bool) {
    marker := "_" + providerSymbol + "=\""
    i := strings.Index(body, marker)
    if i < 0 { return "", false }
    rest := body[i+len(marker):]
    j := strings.IndexByte(rest, '"')
    if j < 0 { return "", false }
    return rest[:j], true
}

// ParseQuote decodes the realtime line for providerSymbol out of body.
// Found is false when the body carries no assignment for the symbol.
//
// A returned quote is only priceable when Price is strictly positive; a
// missing or non-numeric price field leaves Price at zero while the other
// fields still populate, so the partial quote remains usable for
// diagnostics. Fields beyond the end of the payload are simply absent.
func ParseQuote(body, providerSymbol string) (q provider.Quote, found bool) {
    payload, ok := extractAssignment(body, providerSymbol)
    if !ok { return provider.Quote{}, false }
    fields := splitTilde(payload)

    q.Name = fieldAt(fields, quoteFieldName)
    if d, ok := decimalAt(fields, quoteFieldPrice); ok && d.IsPositive() {
        q.Price = d
    }
    if d, ok := decimalAt(fields, quoteFieldChange); ok { q.ChangeAbsolute = d }
    if d, ok := decimalAt(fields, quoteFieldChangePct); ok { q.ChangePercent = d }
    if v, err := strconv.ParseInt(fieldAt(fields, quoteFieldVolume), 10, 64); err == nil {
        q.Volume = v
    }
    if d, ok := decimalAt(fields, quoteFieldTurnover); ok { q.Turnover = d }
    if d, ok := decimalAt(fields, quoteFieldMarketCap); ok { q.MarketCap = d }
    return q, true
}

func splitTilde(payload string) []string { return strings.Split(payload, "~") }

func fieldAt(fields []string, i int) string {
    if i < 0 || i >= len(fields) { return "" }
    return strings.TrimSpace(fields[i])
}

func decimalAt(fields []string, i int) (decimal.Decimal, bool) {
    s := fieldAt(fields, i)
    if s == "" { return decimal.Decimal{}, false }
    d, err := decimal.NewFromString(s)
    if err != nil { return decimal.Decimal{}, false }
    return d, true
}
