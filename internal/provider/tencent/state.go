package tencent

import "log/slog"

// state tracks one logical fetch (single quote, batch group, year of
// history, FX lookup) through its lifecycle. Modeling the fallback chain as
// explicit transitions keeps every degradation observable in the logs
// instead of being buried in error handling.
type state int

const (
    statePending state = iota
    stateInFlight
    stateParsed
    stateDegraded // completed, intentionally with less data than requested
    stateFailed
)

func (s state) String() string {
    switch s {
    case statePending:
        return "pending"
    case stateInFlight:
        return "in_flight"
    case stateParsed:
        return "parsed"
    case stateDegraded:
        return "degraded"
    case stateFailed:
        return "failed"
    }
    return "unknown"
}

type unit struct {
    op     string
    symbol string
    s      state
    logger *slog.Logger
}

func (p *Provider) newUnit(op, symbol string) *unit {
    return &unit{op: op, symbol: symbol, s: statePending, logger: p.logger}
}

func (u *unit) to(s state, attrs ...any) {
    u.s = s
    base := []any{"op", u.op, "symbol", u.symbol, "state", s.String()}
    switch s {
    case stateFailed:
        u.logger.Warn("fetch unit", append(base, attrs...)...)
    case stateDegraded:
        u.logger.Info("fetch unit", append(base, attrs...)...)
    default:
        u.logger.Debug("fetch unit", append(base, attrs...)...)
    }
}
