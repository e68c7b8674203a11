package tencent

import "testing"

func fxBody(status, rate string) string {
    return `var_whUSDCNY="` + status + `~USD/CNY~USDCNY~` + rate +
        `~0~0~7.05~7.08~7.12~7.04~7.10~7.11~0.02~0.3~0";`
}

func TestParseFXRate_Success(t *testing.T) {
    rate, ok := ParseFXRate(fxBody("310", "7.1"), "whUSDCNY")
    if !ok {
        t.Fatal("want ok")
    }
    if rate.String() != "7.1" {
        t.Fatalf("rate: %s", rate)
    }
}

func TestParseFXRate_StatusGateRejectsValidRate(t *testing.T) {
    // The rate field is perfectly parseable; the status alone kills it.
    if _, ok := ParseFXRate(fxBody("311", "7.1"), "whUSDCNY"); ok {
        t.Fatal("status 311 must be rejected")
    }
}

func TestParseFXRate_NonPositiveRate(t *testing.T) {
    for _, r := range []string{"0", "-1.5", "junk", ""} {
        if _, ok := ParseFXRate(fxBody("310", r), "whUSDCNY"); ok {
            t.Fatalf("rate %q must be rejected", r)
        }
    }
}

func TestParseFXRate_MissingAssignment(t *testing.T) {
    if _, ok := ParseFXRate(fxBody("310", "7.1"), "whEURCNY"); ok {
        t.Fatal("wrong pair must not match")
    }
}

func TestParseFXLine_Fields(t *testing.T) {
    line, found := parseFXLine(fxBody("310", "7.1"), "whUSDCNY")
    if !found { t.Fatal("not found") }
    if line.prevClose.String() != "7.05" || line.open.String() != "7.08" {
        t.Fatalf("prev/open: %s/%s", line.prevClose, line.open)
    }
    if line.high.String() != "7.12" || line.low.String() != "7.04" {
        t.Fatalf("high/low: %s/%s", line.high, line.low)
    }
    if line.change.String() != "0.02" || line.changePct.String() != "0.3" {
        t.Fatalf("change: %s/%s", line.change, line.changePct)
    }
}

func TestPairSymbol_AllowList(t *testing.T) {
    if sym, ok := PairSymbol("USD", "CNY"); !ok || sym != "whUSDCNY" {
        t.Fatalf("USD/CNY: %q %v", sym, ok)
    }
    if sym, ok := PairSymbol("CNY", "HKD"); !ok || sym != "whCNYHKD" {
        t.Fatalf("CNY/HKD: %q %v", sym, ok)
    }
    for _, pair := range [][2]string{
        {"USD", "EUR"}, // neither side is the base currency
        {"CNY", "CNY"},
        {"CNY", "XXX"},
        {"", ""},
    } {
        if _, ok := PairSymbol(pair[0], pair[1]); ok {
            t.Fatalf("%s/%s should be unsupported", pair[0], pair[1])
        }
    }
}
