package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitConversion(t *testing.T) {
	// EPS is stored as entered; everything else is entered in millions and
	// stored in raw currency units.
	assert.InDelta(t, 2.48, ToStorageUnits(2.48, MetricEPS), 1e-12)
	assert.InDelta(t, 92_500_000_000, ToStorageUnits(92_500, MetricRevenue), 1)
	assert.InDelta(t, 1_250_000_000, ToStorageUnits(1_250, MetricEBITDA), 1)
	assert.InDelta(t, 430, ToDisplayUnits(430_000_000, MetricFCF), 1e-9)
	assert.InDelta(t, 50, ToDisplayUnits(50_000_000, MetricOther), 1e-9)
}

func TestUnitConversion_RoundTrip(t *testing.T) {
	metrics := []Metric{MetricEPS, MetricRevenue, MetricEBITDA, MetricFCF, MetricOther}
	values := []float64{0, 1, -1, 0.001, 2.48, 92_500, 1e12, -430.75}

	for _, m := range metrics {
		for _, v := range values {
			got := ToDisplayUnits(ToStorageUnits(v, m), m)
			tolerance := math.Abs(v) * 1e-9
			if tolerance == 0 {
				tolerance = 1e-12
			}
			assert.InDelta(t, v, got, tolerance, "metric %s value %v", m, v)
		}
	}
}

func TestScaleFor_UnknownMetricDefaultsToMillions(t *testing.T) {
	assert.Equal(t, 1e6, ScaleFor(Metric("BOOKINGS")))
	assert.Equal(t, 1.0, ScaleFor(MetricEPS))
}

func TestUnitConversionOpt(t *testing.T) {
	assert.Nil(t, ToStorageUnitsOpt(nil, MetricRevenue))
	assert.Nil(t, ToDisplayUnitsOpt(nil, MetricRevenue))

	raw := ToStorageUnitsOpt(fptr(92_500), MetricRevenue)
	require.NotNil(t, raw)
	assert.InDelta(t, 92_500_000_000, *raw, 1)

	display := ToDisplayUnitsOpt(raw, MetricRevenue)
	require.NotNil(t, display)
	assert.InDelta(t, 92_500, *display, 1e-6)
}
