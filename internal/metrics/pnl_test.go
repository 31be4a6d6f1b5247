package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestComputePnL_Long(t *testing.T) {
	pos := Position{TradeType: TradeLong, EntryPrimary: 100}

	res, err := ComputePnL(pos, PricePoint{Primary: 110})
	require.NoError(t, err)
	assert.InDelta(t, 0.10, res.PnLPercent, 1e-9)
	assert.Nil(t, res.PnLAbsolute, "no position size, no absolute P&L")
	assert.Nil(t, res.PrimaryLeg)
	assert.False(t, res.IsRealized)
}

func TestComputePnL_Short(t *testing.T) {
	pos := Position{TradeType: TradeShort, EntryPrimary: 100}

	res, err := ComputePnL(pos, PricePoint{Primary: 90})
	require.NoError(t, err)
	assert.InDelta(t, 0.10, res.PnLPercent, 1e-9)

	// A short loses when the price rises.
	res, err = ComputePnL(pos, PricePoint{Primary: 120})
	require.NoError(t, err)
	assert.InDelta(t, -0.20, res.PnLPercent, 1e-9)
}

func TestComputePnL_AbsoluteRequiresPositionSize(t *testing.T) {
	pos := Position{TradeType: TradeLong, EntryPrimary: 100, PositionSize: fptr(50000)}

	res, err := ComputePnL(pos, PricePoint{Primary: 110})
	require.NoError(t, err)
	require.NotNil(t, res.PnLAbsolute)
	assert.InDelta(t, 5000, *res.PnLAbsolute, 1e-6)

	// Zero size means unknown, not $0.
	pos.PositionSize = fptr(0)
	res, err = ComputePnL(pos, PricePoint{Primary: 110})
	require.NoError(t, err)
	assert.Nil(t, res.PnLAbsolute)
}

func TestComputePnL_PairOffsettingLegs(t *testing.T) {
	// Both legs up 10%: the log spread nets to zero.
	pos := Position{
		TradeType:      TradePair,
		Orientation:    LongPrimaryShortSecondary,
		EntryPrimary:   100,
		EntrySecondary: fptr(50),
	}

	res, err := ComputePnL(pos, PricePoint{Primary: 110, Secondary: fptr(55)})
	require.NoError(t, err)
	assert.InDelta(t, 0, res.PnLPercent, 1e-9)

	// Leg contributions are each leg's own simple return, informational only.
	require.NotNil(t, res.PrimaryLeg)
	require.NotNil(t, res.SecondaryLeg)
	assert.InDelta(t, 0.10, *res.PrimaryLeg, 1e-9)
	assert.InDelta(t, 0.10, *res.SecondaryLeg, 1e-9)
	require.NotNil(t, res.SimpleSpread)
	assert.InDelta(t, 0, *res.SimpleSpread, 1e-9)
}

func TestComputePnL_PairSpread(t *testing.T) {
	// Long leg +10%, short leg -4%: ln(1.10) - ln(0.96) ~= 0.1361.
	pos := Position{
		TradeType:      TradePair,
		Orientation:    LongPrimaryShortSecondary,
		EntryPrimary:   100,
		EntrySecondary: fptr(50),
	}

	res, err := ComputePnL(pos, PricePoint{Primary: 110, Secondary: fptr(48)})
	require.NoError(t, err)
	assert.InDelta(t, 0.1361, res.PnLPercent, 0.0005)
}

func TestComputePnL_PairOrientationNegates(t *testing.T) {
	prices := PricePoint{Primary: 110, Secondary: fptr(48)}

	longPrimary := Position{
		TradeType:      TradePair,
		Orientation:    LongPrimaryShortSecondary,
		EntryPrimary:   100,
		EntrySecondary: fptr(50),
	}
	shortPrimary := longPrimary
	shortPrimary.Orientation = ShortPrimaryLongSecondary

	resLong, err := ComputePnL(longPrimary, prices)
	require.NoError(t, err)
	resShort, err := ComputePnL(shortPrimary, prices)
	require.NoError(t, err)

	assert.InDelta(t, -resLong.PnLPercent, resShort.PnLPercent, 1e-9)
}

func TestComputePnL_SimpleSpreadFollowsOrientation(t *testing.T) {
	// Primary down 10%, secondary up 10%: a short-primary pair gains, and
	// its simple spread must carry the same sign as the P&L.
	pos := Position{
		TradeType:      TradePair,
		Orientation:    ShortPrimaryLongSecondary,
		EntryPrimary:   100,
		EntrySecondary: fptr(50),
	}
	prices := PricePoint{Primary: 90, Secondary: fptr(55)}

	res, err := ComputePnL(pos, prices)
	require.NoError(t, err)
	assert.Positive(t, res.PnLPercent)
	require.NotNil(t, res.SimpleSpread)
	assert.InDelta(t, 1.10/0.90-1, *res.SimpleSpread, 1e-9)

	// Same prices with the long-primary orientation: both turn negative.
	pos.Orientation = LongPrimaryShortSecondary
	res, err = ComputePnL(pos, prices)
	require.NoError(t, err)
	assert.Negative(t, res.PnLPercent)
	require.NotNil(t, res.SimpleSpread)
	assert.InDelta(t, 0.90/1.10-1, *res.SimpleSpread, 1e-9)
}

func TestComputePnL_InvalidInput(t *testing.T) {
	testCases := []struct {
		name string
		pos  Position
		px   PricePoint
	}{
		{
			name: "zero entry price",
			pos:  Position{TradeType: TradeLong, EntryPrimary: 0},
			px:   PricePoint{Primary: 110},
		},
		{
			name: "negative current price",
			pos:  Position{TradeType: TradeLong, EntryPrimary: 100},
			px:   PricePoint{Primary: -5},
		},
		{
			name: "pair without secondary entry",
			pos:  Position{TradeType: TradePair, EntryPrimary: 100},
			px:   PricePoint{Primary: 110, Secondary: fptr(55)},
		},
		{
			name: "pair without secondary current price",
			pos:  Position{TradeType: TradePair, EntryPrimary: 100, EntrySecondary: fptr(50)},
			px:   PricePoint{Primary: 110},
		},
		{
			name: "unknown trade type",
			pos:  Position{TradeType: "STRADDLE", EntryPrimary: 100},
			px:   PricePoint{Primary: 110},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputePnL(tc.pos, tc.px)
			require.Error(t, err)
			var invalid *InvalidInputError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestComputePnL_RealizedEcho(t *testing.T) {
	pos := Position{TradeType: TradeLong, EntryPrimary: 100}

	res, err := ComputePnL(pos, PricePoint{Primary: 130, Realized: true})
	require.NoError(t, err)
	assert.True(t, res.IsRealized)
	assert.InDelta(t, 0.30, res.PnLPercent, 1e-9)
}

func TestComputePnL_Idempotent(t *testing.T) {
	pos := Position{
		TradeType:      TradePair,
		Orientation:    LongPrimaryShortSecondary,
		EntryPrimary:   100,
		EntrySecondary: fptr(50),
		PositionSize:   fptr(10000),
	}
	px := PricePoint{Primary: 117.5, Secondary: fptr(46.25)}

	first, err := ComputePnL(pos, px)
	require.NoError(t, err)
	second, err := ComputePnL(pos, px)
	require.NoError(t, err)

	assert.Equal(t, first.PnLPercent, second.PnLPercent)
	assert.Equal(t, *first.PnLAbsolute, *second.PnLAbsolute)
	assert.Equal(t, *first.SimpleSpread, *second.SimpleSpread)
}

func TestComputePnLHistory(t *testing.T) {
	pos := Position{TradeType: TradeLong, EntryPrimary: 100}
	base := time.Date(2025, 3, 3, 23, 59, 59, 0, time.UTC)

	snapshots := []Snapshot{
		{Time: base, Primary: 105},
		{Time: base.AddDate(0, 0, 1), Primary: 95},
		{Time: base.AddDate(0, 0, 2), Primary: 120},
	}

	history := ComputePnLHistory(pos, snapshots)
	require.Len(t, history, 3)

	// Each point stands alone; no carry-over between entries.
	assert.InDelta(t, 0.05, history[0].PnLPercent, 1e-9)
	assert.InDelta(t, -0.05, history[1].PnLPercent, 1e-9)
	assert.InDelta(t, 0.20, history[2].PnLPercent, 1e-9)
	assert.Equal(t, base, history[0].Time)
}

func TestComputePnLHistory_Empty(t *testing.T) {
	pos := Position{TradeType: TradeLong, EntryPrimary: 100}

	history := ComputePnLHistory(pos, nil)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestComputePnLHistory_SkipsInvalidSnapshots(t *testing.T) {
	pos := Position{
		TradeType:      TradePair,
		Orientation:    LongPrimaryShortSecondary,
		EntryPrimary:   100,
		EntrySecondary: fptr(50),
	}
	base := time.Date(2025, 3, 3, 23, 59, 59, 0, time.UTC)

	snapshots := []Snapshot{
		{Time: base, Primary: 110, Secondary: fptr(55)},
		{Time: base.AddDate(0, 0, 1), Primary: 112}, // missing secondary leg
		{Time: base.AddDate(0, 0, 2), Primary: 114, Secondary: fptr(53)},
	}

	history := ComputePnLHistory(pos, snapshots)
	require.Len(t, history, 2)
	assert.Equal(t, base, history[0].Time)
	assert.Equal(t, base.AddDate(0, 0, 2), history[1].Time)
}
