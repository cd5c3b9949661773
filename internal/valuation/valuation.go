// Package valuation derives buy/hold/sell signals from a current price and
// user-set thresholds, and renders day changes for display.
package valuation

import (
	"fmt"
	"strconv"
	"strings"
)

// Signal is the valuation verdict for an instrument.
type Signal int

const (
	Unknown Signal = iota // no usable price yet
	Buy
	Hold
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Hold:
		return "HOLD"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

func (s Signal) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Signal) UnmarshalText(b []byte) error {
	switch string(b) {
	case "BUY":
		*s = Buy
	case "HOLD":
		*s = Hold
	case "SELL":
		*s = Sell
	default:
		*s = Unknown
	}
	return nil
}

// Evaluate maps a price and thresholds to a signal. BUY wins over SELL when a
// misconfigured user inverts the thresholds so that both match.
func Evaluate(price, targetBuy, targetSell int64) Signal {
	switch {
	case price <= 0:
		return Unknown
	case price <= targetBuy:
		return Buy
	case price >= targetSell:
		return Sell
	default:
		return Hold
	}
}

// FormatChange renders the day change with a direction glyph, e.g.
// "▲1,200 (+1.71%)", "▼1,200 (-1.71%)" or "0 (0.00%)".
func FormatChange(change int64, rate float64) string {
	switch {
	case change > 0:
		return fmt.Sprintf("▲%s (+%.2f%%)", group(change), rate)
	case change < 0:
		return fmt.Sprintf("▼%s (%.2f%%)", group(-change), rate)
	default:
		return "0 (0.00%)"
	}
}

// group inserts thousands separators into a non-negative value.
func group(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
