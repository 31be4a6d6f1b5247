package models

import (
	"research-tracker-go/internal/metrics"

	"gorm.io/gorm"
)

// Guidance tracks management guidance for one ticker, period, and metric,
// alongside the actual result once reported. Either the low/high range or
// the point value is populated, or neither, never both forms.
type Guidance struct {
	gorm.Model
	FolderID uint   `gorm:"not null;index;uniqueIndex:idx_guidance_unique" json:"folder_id"`
	Ticker   string `gorm:"not null;index;uniqueIndex:idx_guidance_unique" json:"ticker"`

	// Period the guidance is for (e.g. "2025-Q1", "2025").
	Period string         `gorm:"not null;uniqueIndex:idx_guidance_unique" json:"period"`
	Metric metrics.Metric `gorm:"not null;uniqueIndex:idx_guidance_unique" json:"metric"`
	// Period in which the guidance was given (e.g. "2024-Q4").
	GuidancePeriod string `gorm:"not null;uniqueIndex:idx_guidance_unique" json:"guidance_period"`

	GuidanceLow   *float64 `json:"-"`
	GuidanceHigh  *float64 `json:"-"`
	GuidancePoint *float64 `json:"-"`
	ActualResult  *float64 `json:"-"`

	Notes *string `json:"notes,omitempty"`
}

// Reference is the value actuals are compared against: the range midpoint
// when a range is guided, otherwise the point value (nil when no guidance is
// populated).
func (g *Guidance) Reference() *float64 {
	if mid := metrics.GuidanceMidpoint(g.GuidanceLow, g.GuidanceHigh); mid != nil {
		return mid
	}
	return g.GuidancePoint
}
