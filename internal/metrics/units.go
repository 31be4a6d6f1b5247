package metrics

// Metric identifies a financial metric and, through the scale table, how its
// values are stored versus displayed.
type Metric string

const (
	MetricEPS     Metric = "EPS"
	MetricRevenue Metric = "REVENUE"
	MetricEBITDA  Metric = "EBITDA"
	MetricFCF     Metric = "FCF"
	MetricOther   Metric = "OTHER"
)

// metricScale maps each metric to the factor between display units and
// storage units. EPS is currency-per-share and stored as entered; everything
// else is entered in millions and stored in raw currency units. Adding a
// metric is a row here, not a new branch at every call site.
var metricScale = map[Metric]float64{
	MetricEPS:     1,
	MetricRevenue: 1e6,
	MetricEBITDA:  1e6,
	MetricFCF:     1e6,
	MetricOther:   1e6,
}

// ScaleFor returns the display-to-storage factor for a metric. Unknown
// metrics fall back to the millions convention, matching MetricOther.
func ScaleFor(m Metric) float64 {
	if scale, ok := metricScale[m]; ok {
		return scale
	}
	return 1e6
}

// ToStorageUnits converts a user-entered display value into storage units.
func ToStorageUnits(display float64, m Metric) float64 {
	return display * ScaleFor(m)
}

// ToDisplayUnits converts a stored raw value into display units. It is the
// inverse of ToStorageUnits within floating-point tolerance.
func ToDisplayUnits(raw float64, m Metric) float64 {
	return raw / ScaleFor(m)
}

// ToStorageUnitsOpt is ToStorageUnits lifted over optional values.
func ToStorageUnitsOpt(display *float64, m Metric) *float64 {
	if display == nil {
		return nil
	}
	raw := ToStorageUnits(*display, m)
	return &raw
}

// ToDisplayUnitsOpt is ToDisplayUnits lifted over optional values.
func ToDisplayUnitsOpt(raw *float64, m Metric) *float64 {
	if raw == nil {
		return nil
	}
	display := ToDisplayUnits(*raw, m)
	return &display
}
