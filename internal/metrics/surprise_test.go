package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSurprise(t *testing.T) {
	testCases := []struct {
		name         string
		actual       *float64
		estimate     *float64
		wantNil      bool
		wantAbs      float64
		wantPct      *float64
		pctTolerance float64
	}{
		{
			name:         "beat on EPS",
			actual:       fptr(2.48),
			estimate:     fptr(2.35),
			wantAbs:      0.13,
			wantPct:      fptr(5.53),
			pctTolerance: 0.1,
		},
		{
			name:         "miss",
			actual:       fptr(1.80),
			estimate:     fptr(2.00),
			wantAbs:      -0.20,
			wantPct:      fptr(-10.0),
			pctTolerance: 1e-6,
		},
		{
			name:     "zero estimate keeps absolute, drops percent",
			actual:   fptr(100),
			estimate: fptr(0),
			wantAbs:  100,
			wantPct:  nil,
		},
		{
			name:         "negative estimate, sign follows arithmetic",
			actual:       fptr(-1.0),
			estimate:     fptr(-2.0),
			wantAbs:      1.0,
			wantPct:      fptr(-50.0),
			pctTolerance: 1e-6,
		},
		{
			name:     "missing actual",
			actual:   nil,
			estimate: fptr(2.35),
			wantNil:  true,
		},
		{
			name:     "missing estimate",
			actual:   fptr(2.48),
			estimate: nil,
			wantNil:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeSurprise(tc.actual, tc.estimate)

			if tc.wantNil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.InDelta(t, tc.wantAbs, got.Absolute, 1e-9)
			if tc.wantPct == nil {
				assert.Nil(t, got.Percent)
			} else {
				require.NotNil(t, got.Percent)
				assert.InDelta(t, *tc.wantPct, *got.Percent, tc.pctTolerance)
			}
		})
	}
}

func TestGuidanceMidpoint(t *testing.T) {
	mid := GuidanceMidpoint(fptr(90e9), fptr(94e9))
	require.NotNil(t, mid)
	assert.InDelta(t, 92e9, *mid, 1)

	assert.Nil(t, GuidanceMidpoint(nil, fptr(94e9)))
	assert.Nil(t, GuidanceMidpoint(fptr(90e9), nil))
	assert.Nil(t, GuidanceMidpoint(nil, nil))
}

func TestComputeVsGuidance(t *testing.T) {
	mid := GuidanceMidpoint(fptr(90e9), fptr(94e9))
	require.NotNil(t, mid)

	got := ComputeVsGuidance(fptr(95e9), mid)
	require.NotNil(t, got)
	assert.InDelta(t, 3e9, got.Absolute, 1)
	require.NotNil(t, got.Percent)
	assert.InDelta(t, 3.26, *got.Percent, 0.1)

	// Point-form guidance: the point value stands in for the midpoint.
	got = ComputeVsGuidance(fptr(105), fptr(100))
	require.NotNil(t, got)
	require.NotNil(t, got.Percent)
	assert.InDelta(t, 5.0, *got.Percent, 1e-6)

	assert.Nil(t, ComputeVsGuidance(nil, mid))
	assert.Nil(t, ComputeVsGuidance(fptr(95e9), nil))
}
