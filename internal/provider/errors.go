package provider

import (
    "errors"
    "fmt"
)

// ErrNotConfigured is returned when no upstream provider is configured at
// all. It is the only condition surfaced to callers as fatal; everything
// else degrades to fewer records than requested.
var ErrNotConfigured = errors.New("provider: not configured")

// UnsupportedPairError rejects an FX pair outside the allow-list. It is
// returned synchronously, before any network call is attempted.
type UnsupportedPairError struct {
    From string
    To   string
}

func (e *UnsupportedPairError) Error() string {
    return fmt.Sprintf("provider: unsupported currency pair %s/%s", e.From, e.To)
}

// ParseError means a response body did not match the expected grammar.
// Callers treat it like "no data" for that unit of work; the offending
// fragment is kept for diagnosis.
type ParseError struct {
    Symbol   string
    Fragment string
    Err      error
}

func (e *ParseError) Error() string {
    if e.Err != nil {
        return fmt.Sprintf("provider: parse %s: %v", e.Symbol, e.Err)
    }
    return fmt.Sprintf("provider: parse %s: grammar mismatch", e.Symbol)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidValueError means the grammar matched but domain rules rejected the
// value (non-positive price or rate, failed status gate). Distinct from
// ParseError so the two can be counted separately.
type InvalidValueError struct {
    Symbol string
    Reason string
}

func (e *InvalidValueError) Error() string {
    return fmt.Sprintf("provider: invalid value for %s: %s", e.Symbol, e.Reason)
}
