package models

import (
	"time"

	"gorm.io/gorm"
)

// PeriodType is the reporting cadence of an earnings row.
type PeriodType string

const (
	PeriodQuarterly PeriodType = "QUARTERLY"
	PeriodAnnual    PeriodType = "ANNUAL"
)

// Earnings tracks consensus estimate, own estimate, and actual for one
// ticker and fiscal period. EPS values are currency-per-share; revenue,
// EBITDA, and FCF are stored in raw currency units and converted to millions
// at the API boundary.
type Earnings struct {
	gorm.Model
	FolderID uint   `gorm:"not null;index;uniqueIndex:idx_folder_ticker_quarter" json:"folder_id"`
	Ticker   string `gorm:"not null;index;uniqueIndex:idx_folder_ticker_quarter" json:"ticker"`

	PeriodType    PeriodType `gorm:"not null;default:QUARTERLY" json:"period_type"`
	FiscalQuarter string     `gorm:"not null;uniqueIndex:idx_folder_ticker_quarter" json:"fiscal_quarter"`
	// Free-form period label (e.g. "FY2025") for rows that are not a
	// standard fiscal quarter.
	Period        *string    `json:"period,omitempty"`
	PeriodEndDate *time.Time `json:"period_end_date,omitempty"`

	EstimateEPS   *float64 `json:"estimate_eps,omitempty"`
	ActualEPS     *float64 `json:"actual_eps,omitempty"`
	MyEstimateEPS *float64 `json:"my_estimate_eps,omitempty"`

	EstimateRev   *float64 `json:"-"`
	ActualRev     *float64 `json:"-"`
	MyEstimateRev *float64 `json:"-"`

	EstimateEBITDA   *float64 `json:"-"`
	ActualEBITDA     *float64 `json:"-"`
	MyEstimateEBITDA *float64 `json:"-"`

	EstimateFCF   *float64 `json:"-"`
	ActualFCF     *float64 `json:"-"`
	MyEstimateFCF *float64 `json:"-"`

	Notes *string `json:"notes,omitempty"`
}
