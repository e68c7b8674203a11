package symbol

import "testing"

func TestEncode_KnownExchanges(t *testing.T) {
    cases := []struct {
        ticker, mic, want string
    }{
        {"600000", "XSHG", "sh600000"},
        {"000001", "XSHE", "sz000001"},
        {"00700", "XHKG", "hk00700"},
    }
    for _, c := range cases {
        if got := Encode(c.ticker, c.mic); got != c.want {
            t.Fatalf("Encode(%q, %q) = %q, want %q", c.ticker, c.mic, got, c.want)
        }
    }
}

func TestEncode_DottedFormWinsOverExchangeArg(t *testing.T) {
    if got := Encode("688110.SH", "XSHE"); got != "sh688110" {
        t.Fatalf("dotted form: got %q", got)
    }
    if got := Encode("00700.hk", ""); got != "hk00700" {
        t.Fatalf("case-insensitive suffix: got %q", got)
    }
}

func TestEncode_UnknownExchange_Passthrough(t *testing.T) {
    if got := Encode("AAPL", "XNAS"); got != "AAPL" {
        t.Fatalf("unknown exchange: got %q", got)
    }
    if got := Encode("AAPL.US", ""); got != "AAPL.US" {
        t.Fatalf("unknown suffix: got %q", got)
    }
}

func TestDecode_RoundTrip(t *testing.T) {
    for _, mic := range MICs() {
        enc := Encode("600000", mic)
        ticker, gotMIC, _ := Decode(enc)
        if ticker != "600000" || gotMIC != mic {
            t.Fatalf("round trip %s: got (%q, %q)", mic, ticker, gotMIC)
        }
    }
}

func TestDecode_CountryGrouping(t *testing.T) {
    // Both mainland exchanges share CN; Hong Kong is distinct.
    _, _, c1 := Decode("sh600000")
    _, _, c2 := Decode("sz000001")
    _, _, c3 := Decode("hk00700")
    if c1 != "CN" || c2 != "CN" {
        t.Fatalf("mainland country: %q %q", c1, c2)
    }
    if c3 != "HK" {
        t.Fatalf("hk country: %q", c3)
    }
}

func TestDecode_Unresolved(t *testing.T) {
    ticker, mic, country := Decode("AAPL")
    if ticker != "AAPL" || mic != "" || country != "" {
        t.Fatalf("unresolved: (%q, %q, %q)", ticker, mic, country)
    }
}

func TestDecode_DottedForm(t *testing.T) {
    ticker, mic, country := Decode("688110.SH")
    if ticker != "688110" || mic != "XSHG" || country != "CN" {
        t.Fatalf("dotted decode: (%q, %q, %q)", ticker, mic, country)
    }
}

func TestCurrency(t *testing.T) {
    if Currency("XSHG") != "CNY" || Currency("XSHE") != "CNY" {
        t.Fatal("mainland currency")
    }
    if Currency("XHKG") != "HKD" {
        t.Fatal("hk currency")
    }
    // Unrecognized falls back to the base market currency.
    if Currency("XNAS") != "CNY" {
        t.Fatal("fallback currency")
    }
}
