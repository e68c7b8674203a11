// Package symbol maps between canonical (ticker, exchange) pairs and the
// upstream's compact per-exchange symbol strings (e.g. "600000"/XSHG <->
// "sh600000"), and infers country and currency from the exchange.
package symbol

import "strings"

// Exchange describes one supported trading venue.
type Exchange struct {
    MIC      string // operating MIC, e.g. "XSHG"
    Prefix   string // upstream symbol prefix, e.g. "sh"
    Suffix   string // dotted-form suffix, e.g. "SH"
    Country  string // ISO country code
    Currency string // ISO currency code
}

// exchanges is immutable configuration data; extend here to support a new
// market.
var exchanges = []Exchange{
    {MIC: "XSHG", Prefix: "sh", Suffix: "SH", Country: "CN", Currency: "CNY"},
    {MIC: "XSHE", Prefix: "sz", Suffix: "SZ", Country: "CN", Currency: "CNY"},
    {MIC: "XHKG", Prefix: "hk", Suffix: "HK", Country: "HK", Currency: "HKD"},
}

func byMIC(mic string) *Exchange {
    for i := range exchanges {
        if exchanges[i].MIC == mic { return &exchanges[i] }
    }
    return nil
}

func bySuffix(suffix string) *Exchange {
    for i := range exchanges {
        if strings.EqualFold(exchanges[i].Suffix, suffix) { return &exchanges[i] }
    }
    return nil
}

// Encode converts a ticker plus exchange MIC into the upstream symbol.
// The ticker may also carry a dotted suffix ("688110.SH"), which wins over
// the exchange argument. An unknown exchange returns the ticker unchanged;
// the upstream will simply find no data for it.
func Encode(ticker, exchangeMIC string) string {
    if i := strings.IndexByte(ticker, '.'); i >= 0 {
        if ex := bySuffix(ticker[i+1:]); ex != nil {
            return ex.Prefix + ticker[:i]
        }
        return ticker
    }
    if ex := byMIC(exchangeMIC); ex != nil {
        return ex.Prefix + ticker
    }
    return ticker
}

// Decode splits an upstream symbol into (ticker, exchange MIC, country).
// An unrecognized prefix yields the input as ticker with empty exchange and
// country; callers must treat empty as "unresolved", not as an error.
func Decode(providerSymbol string) (ticker, exchangeMIC, country string) {
    // Dotted form ("688110.SH") also appears in search results.
    if i := strings.IndexByte(providerSymbol, '.'); i >= 0 {
        if ex := bySuffix(providerSymbol[i+1:]); ex != nil {
            return providerSymbol[:i], ex.MIC, ex.Country
        }
        return providerSymbol, "", ""
    }
    for i := range exchanges {
        ex := &exchanges[i]
        if strings.HasPrefix(providerSymbol, ex.Prefix) {
            return providerSymbol[len(ex.Prefix):], ex.MIC, ex.Country
        }
    }
    return providerSymbol, "", ""
}

// Currency returns the trading currency for an exchange MIC. Unrecognized
// exchanges fall back to CNY, the base market's currency.
func Currency(exchangeMIC string) string {
    if ex := byMIC(exchangeMIC); ex != nil {
        return ex.Currency
    }
    return "CNY"
}

// Supported reports whether the exchange MIC is in the table.
func Supported(exchangeMIC string) bool { return byMIC(exchangeMIC) != nil }

// MICs lists the supported exchange MICs in table order.
func MICs() []string {
    out := make([]string, 0, len(exchanges))
    for i := range exchanges { out = append(out, exchanges[i].MIC) }
    return out
}
