// Package metrics implements the pure calculation layer of the research
// tracker: position P&L (long, short, pair log-spread), earnings surprise and
// guidance math, and raw/millions unit conversion. Every function is
// stateless and side-effect free; persistence and price fetching live in the
// calling layers.
package metrics

import "time"

// TradeType identifies how a position is directioned.
type TradeType string

const (
	TradeLong  TradeType = "LONG"
	TradeShort TradeType = "SHORT"
	TradePair  TradeType = "PAIR_LONG_SHORT"
)

// PairOrientation says which leg of a pair trade is the long one.
type PairOrientation string

const (
	LongPrimaryShortSecondary PairOrientation = "LONG_PRIMARY_SHORT_SECONDARY"
	ShortPrimaryLongSecondary PairOrientation = "SHORT_PRIMARY_LONG_SECONDARY"
)

// Position carries the entry-side inputs of a P&L computation. The engine
// only reads it; ownership stays with the persistence layer.
type Position struct {
	TradeType      TradeType
	Orientation    PairOrientation
	EntryPrimary   float64
	EntrySecondary *float64
	// PositionSize is optional; absolute P&L is only produced when it is
	// present and positive.
	PositionSize *float64
}

// PricePoint is the "current" side of a P&L computation: either live prices
// or the position's exit prices.
type PricePoint struct {
	Primary   float64
	Secondary *float64
	// Realized marks the point as exit prices. It is echoed on the result
	// and does not change the arithmetic.
	Realized bool
}

// PnLResult is the outcome of a single P&L computation. Percentages are
// fractions (0.10 == +10%). Optional fields are nil when not applicable;
// zero never stands in for "unknown".
type PnLResult struct {
	PnLPercent  float64  `json:"pnl_percent"`
	PnLAbsolute *float64 `json:"pnl_absolute,omitempty"`
	// Per-leg simple returns for pair trades. Informational only: the
	// log-spread total is not derived from them and they do not sum to it.
	PrimaryLeg   *float64 `json:"pnl_primary_leg,omitempty"`
	SecondaryLeg *float64 `json:"pnl_secondary_leg,omitempty"`
	SimpleSpread *float64 `json:"simple_spread,omitempty"`
	IsRealized   bool     `json:"is_realized"`
}

// Snapshot is one observation in a price history.
type Snapshot struct {
	Time      time.Time
	Primary   float64
	Secondary *float64
}

// HistoryPoint pairs a snapshot with the P&L it produces.
type HistoryPoint struct {
	Time      time.Time `json:"timestamp"`
	Primary   float64   `json:"price_primary"`
	Secondary *float64  `json:"price_secondary,omitempty"`
	PnLResult
}

// InvalidInputError reports a missing or non-positive price for the requested
// trade type. The caller decides how to surface it; the engine never defaults
// silently.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func invalidInput(reason string) error {
	return &InvalidInputError{Reason: reason}
}
