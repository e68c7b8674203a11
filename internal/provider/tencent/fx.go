package tencent

import (
    "github.com/shopspring/decimal"
)

// FX realtime line field indices. The embedding grammar is the same as for
// stock quotes but the payload layout differs.
const (
    fxFieldStatus    = 0
    fxFieldRate      = 3
    fxFieldPrevClose = 6
    fxFieldOpen      = 7
    fxFieldHigh      = 8
    fxFieldLow       = 9
    fxFieldChange    = 12
    fxFieldChangePct = 13
)

// fxStatusOK is the upstream's success sentinel. Any other status means the
// line is stale or unavailable and its numeric fields must not be trusted.
const fxStatusOK = "310"

// fxBaseCurrency is crossed with fxQuoteCurrencies, in both directions, to
// form the supported pair universe.
const fxBaseCurrency = "CNY"

var fxQuoteCurrencies = []string{
    "USD", "EUR", "GBP", "JPY", "HKD", "AUD", "CAD", "CHF", "SGD", "NZD",
}

// PairSymbol builds the upstream symbol for a currency pair (e.g.
// ("USD","CNY") -> "whUSDCNY"). Ok is false for pairs outside the supported
// universe; callers reject those before touching the network.
func PairSymbol(from, to string) (string, bool) {
    if !pairSupported(from, to) { return "", false }
    return "wh" + from + to, true
}

func pairSupported(from, to string) bool {
    if from == to { return false }
    other := ""
    switch {
    case from == fxBaseCurrency:
        other = to
    case to == fxBaseCurrency:
        other = from
    default:
        return false
    }
    for _, c := range fxQuoteCurrencies {
        if c == other { return true }
    }
    return false
}

// fxLine is the decoded realtime FX payload. Rate is zero unless the status
// gate passed and the field parsed to a positive number.
type fxLine struct {
    status    string
    rate      decimal.Decimal
    prevClose decimal.Decimal
    open      decimal.Decimal
    high      decimal.Decimal
    low       decimal.Decimal
    change    decimal.Decimal
    changePct decimal.Decimal
}

// ParseFXRate extracts the rate for pairSymbol from body. Ok is false when
// the assignment is missing, the status is not the success sentinel, or the
// rate is not strictly positive. A well-formed rate behind a failed status
// gate is still discarded: the upstream signals staleness through the
// status, not through the numeric fields.
func ParseFXRate(body, pairSymbol string) (decimal.Decimal, bool) {
    line, found := parseFXLine(body, pairSymbol)
    if !found || line.status != fxStatusOK { return decimal.Decimal{}, false }
    if !line.rate.IsPositive() { return decimal.Decimal{}, false }
    return line.rate, true
}

func parseFXLine(body, pairSymbol string) (fxLine, bool) {
    payload, ok := extractAssignment(body, pairSymbol)
    if !ok { return fxLine{}, false }
    fields := splitTilde(payload)

    var line fxLine
    line.status = fieldAt(fields, fxFieldStatus)
    if d, ok := decimalAt(fields, fxFieldRate); ok { line.rate = d }
    if d, ok := decimalAt(fields, fxFieldPrevClose); ok { line.prevClose = d }
    if d, ok := decimalAt(fields, fxFieldOpen); ok { line.open = d }
    if d, ok := decimalAt(fields, fxFieldHigh); ok { line.high = d }
    if d, ok := decimalAt(fields, fxFieldLow); ok { line.low = d }
    if d, ok := decimalAt(fields, fxFieldChange); ok { line.change = d }
    if d, ok := decimalAt(fields, fxFieldChangePct); ok { line.changePct = d }
    return line, true
}
