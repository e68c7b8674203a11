package tencent

import "testing"

const pinganBody = `var_sz000001="51~PingAn Bank~000001~12.34~0.12~0.98~100000~50000~~999999";`

func TestParseQuote_AllFields(t *testing.T) {
    q, found := ParseQuote(pinganBody, "sz000001")
    if !found { t.Fatal("expected assignment to be found") }
    if q.Name != "PingAn Bank" { t.Fatalf("name: %q", q.Name) }
    if q.Price.String() != "12.34" { t.Fatalf("price: %s", q.Price) }
    if q.ChangeAbsolute.String() != "0.12" { t.Fatalf("change: %s", q.ChangeAbsolute) }
    if q.ChangePercent.String() != "0.98" { t.Fatalf("change pct: %s", q.ChangePercent) }
    if q.Volume != 100000 { t.Fatalf("volume: %d", q.Volume) }
    if q.Turnover.String() != "50000" { t.Fatalf("turnover: %s", q.Turnover) }
    if q.MarketCap.String() != "999999" { t.Fatalf("market cap: %s", q.MarketCap) }
}

func TestParseQuote_SymbolMissing(t *testing.T) {
    if _, found := ParseQuote(pinganBody, "sh600000"); found {
        t.Fatal("should not find sh600000 in a sz000001 body")
    }
    if _, found := ParseQuote("", "sz000001"); found {
        t.Fatal("empty body")
    }
}

func TestParseQuote_AnchoredMatch(t *testing.T) {
    // Multiple assignments in one blob: the requested symbol must match its
    // own line, not the first one, and sz000001 must not match sz0000011.
    body := `v_sz0000011="51~Other~0000011~99.99~~~~~~";` + "\n" +
        `v_sz000001="51~PingAn Bank~000001~12.34~~~~~~";`
    q, found := ParseQuote(body, "sz000001")
    if !found { t.Fatal("not found") }
    if q.Price.String() != "12.34" {
        t.Fatalf("matched wrong assignment, price: %s", q.Price)
    }
}

func TestParseQuote_NonPositivePriceNotPriceable(t *testing.T) {
    for _, raw := range []string{"0", "-3.5", "abc", ""} {
        body := `v_sz000001="51~PingAn Bank~000001~` + raw + `~0.12~0.98~100000~50000~~999999";`
        q, found := ParseQuote(body, "sz000001")
        if !found { t.Fatalf("price %q: assignment should be found", raw) }
        if q.Price.IsPositive() {
            t.Fatalf("price %q must not be priceable, got %s", raw, q.Price)
        }
        // Partial quote still carries the rest for diagnostics.
        if q.Name != "PingAn Bank" { t.Fatalf("price %q: name lost", raw) }
    }
}

func TestParseQuote_ShortPayloadFieldsAbsent(t *testing.T) {
    // Fields past the end of the payload are absent, not an error.
    body := `v_sz000001="51~PingAn Bank~000001~12.34";`
    q, found := ParseQuote(body, "sz000001")
    if !found { t.Fatal("not found") }
    if q.Price.String() != "12.34" { t.Fatalf("price: %s", q.Price) }
    if q.Volume != 0 || !q.MarketCap.IsZero() {
        t.Fatalf("absent fields should be zero: %+v", q)
    }
}

func TestParseQuote_UnterminatedAssignment(t *testing.T) {
    if _, found := ParseQuote(`v_sz000001="51~PingAn`, "sz000001"); found {
        t.Fatal("unterminated payload should not be found")
    }
}
