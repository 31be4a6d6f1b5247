package metrics

import "math"

// longPnL is the simple return of a long position: (current - entry) / entry.
func longPnL(entry, current float64) (float64, error) {
	if entry <= 0 {
		return 0, invalidInput("entry price must be positive")
	}
	if current <= 0 {
		return 0, invalidInput("current price must be positive")
	}
	return (current - entry) / entry, nil
}

// shortPnL mirrors longPnL for a short position: (entry - current) / entry.
func shortPnL(entry, current float64) (float64, error) {
	if entry <= 0 {
		return 0, invalidInput("entry price must be positive")
	}
	if current <= 0 {
		return 0, invalidInput("current price must be positive")
	}
	return (entry - current) / entry, nil
}

// logReturn is ln(current/entry) for one leg.
func logReturn(entry, current float64) (float64, error) {
	if entry <= 0 || current <= 0 {
		return 0, invalidInput("prices must be positive")
	}
	return math.Log(current / entry), nil
}

// ComputePnL computes percent and absolute P&L for a position against a set
// of current (or exit) prices.
//
// LONG:  (current - entry) / entry
// SHORT: (entry - current) / entry
// PAIR:  ln(curP/entP) - ln(curS/entS), negated for short-primary pairs
//
// The pair formula is a log spread: it is additive and scale-invariant, so
// the two legs net correctly regardless of their relative price magnitudes.
// Absolute P&L is percent × position size, and only present when a positive
// position size was supplied.
func ComputePnL(pos Position, px PricePoint) (PnLResult, error) {
	res := PnLResult{IsRealized: px.Realized}

	switch pos.TradeType {
	case TradeLong:
		pct, err := longPnL(pos.EntryPrimary, px.Primary)
		if err != nil {
			return PnLResult{}, err
		}
		res.PnLPercent = pct

	case TradeShort:
		pct, err := shortPnL(pos.EntryPrimary, px.Primary)
		if err != nil {
			return PnLResult{}, err
		}
		res.PnLPercent = pct

	case TradePair:
		if pos.EntrySecondary == nil || *pos.EntrySecondary <= 0 {
			return PnLResult{}, invalidInput("pair trade requires a positive secondary entry price")
		}
		if px.Secondary == nil {
			return PnLResult{}, invalidInput("pair trade requires a secondary current price")
		}

		retPrimary, err := logReturn(pos.EntryPrimary, px.Primary)
		if err != nil {
			return PnLResult{}, err
		}
		retSecondary, err := logReturn(*pos.EntrySecondary, *px.Secondary)
		if err != nil {
			return PnLResult{}, err
		}

		spread := retPrimary - retSecondary
		if pos.Orientation == ShortPrimaryLongSecondary {
			spread = -spread
		}
		res.PnLPercent = spread

		// Informational per-leg simple returns and the simple spread.
		// These are not inputs to the log-spread total above. The simple
		// spread is the long leg's price ratio over the short leg's, so its
		// sign agrees with the trade's P&L for either orientation.
		legPrimary := (px.Primary - pos.EntryPrimary) / pos.EntryPrimary
		legSecondary := (*px.Secondary - *pos.EntrySecondary) / *pos.EntrySecondary
		ratioPrimary := px.Primary / pos.EntryPrimary
		ratioSecondary := *px.Secondary / *pos.EntrySecondary
		simple := ratioPrimary/ratioSecondary - 1
		if pos.Orientation == ShortPrimaryLongSecondary {
			simple = ratioSecondary/ratioPrimary - 1
		}
		res.PrimaryLeg = &legPrimary
		res.SecondaryLeg = &legSecondary
		res.SimpleSpread = &simple

	default:
		return PnLResult{}, invalidInput("unknown trade type: " + string(pos.TradeType))
	}

	if pos.PositionSize != nil && *pos.PositionSize > 0 {
		abs := res.PnLPercent * *pos.PositionSize
		res.PnLAbsolute = &abs
	}

	return res, nil
}

// ComputePnLHistory derives a P&L series from an ordered sequence of price
// snapshots, one point per snapshot, each computed independently. The input
// order is preserved and never re-sorted here. Snapshots that fail validation
// (for example a pair snapshot missing its secondary leg) are skipped rather
// than failing the whole series. An empty input yields an empty series.
func ComputePnLHistory(pos Position, snapshots []Snapshot) []HistoryPoint {
	history := make([]HistoryPoint, 0, len(snapshots))

	for _, snap := range snapshots {
		res, err := ComputePnL(pos, PricePoint{
			Primary:   snap.Primary,
			Secondary: snap.Secondary,
		})
		if err != nil {
			continue
		}
		history = append(history, HistoryPoint{
			Time:      snap.Time,
			Primary:   snap.Primary,
			Secondary: snap.Secondary,
			PnLResult: res,
		})
	}

	return history
}
