package models

import (
	"time"

	"research-tracker-go/internal/metrics"

	"gorm.io/gorm"
)

// IdeaStatus is the lifecycle state of a trade idea.
type IdeaStatus string

const (
	StatusDraft    IdeaStatus = "DRAFT"
	StatusActive   IdeaStatus = "ACTIVE"
	StatusScaledUp IdeaStatus = "SCALED_UP"
	StatusTrimmed  IdeaStatus = "TRIMMED"
	StatusClosed   IdeaStatus = "CLOSED"
	StatusKilled   IdeaStatus = "KILLED"
)

// Horizon is the expected holding period of an idea.
type Horizon string

const (
	HorizonEvent       Horizon = "EVENT"
	HorizonThreeToSix  Horizon = "3_6MO"
	HorizonSixToTwelve Horizon = "6_12MO"
	HorizonSecular     Horizon = "SECULAR"
	HorizonOther       Horizon = "OTHER"
)

// Idea is a trade idea inside a folder: thesis, position details, and the
// prices the P&L engine works from.
type Idea struct {
	gorm.Model
	FolderID uint   `gorm:"not null;index" json:"folder_id"`
	Folder   Folder `json:"-"`

	Title           string                   `gorm:"not null" json:"title"`
	TradeType       metrics.TradeType        `gorm:"not null" json:"trade_type"`
	PairOrientation *metrics.PairOrientation `json:"pair_orientation,omitempty"`
	Status          IdeaStatus               `gorm:"not null;default:DRAFT" json:"status"`
	StartDate       time.Time                `gorm:"not null" json:"start_date"`

	EntryPricePrimary   float64  `gorm:"not null" json:"entry_price_primary"`
	EntryPriceSecondary *float64 `json:"entry_price_secondary,omitempty"`

	PositionSize float64 `gorm:"not null;default:0" json:"position_size"`
	Horizon      Horizon `gorm:"not null;default:OTHER" json:"horizon"`

	ThesisMD       *string  `json:"thesis_md,omitempty"`
	Catalysts      []string `gorm:"serializer:json" json:"catalysts"`
	Risks          []string `gorm:"serializer:json" json:"risks"`
	KillCriteriaMD *string  `json:"kill_criteria_md,omitempty"`

	TargetPricePrimary   *float64 `json:"target_price_primary,omitempty"`
	StopLevelPrimary     *float64 `json:"stop_level_primary,omitempty"`
	TargetPriceSecondary *float64 `json:"target_price_secondary,omitempty"`
	StopLevelSecondary   *float64 `json:"stop_level_secondary,omitempty"`

	ExitPricePrimary   *float64   `json:"exit_price_primary,omitempty"`
	ExitPriceSecondary *float64   `json:"exit_price_secondary,omitempty"`
	ExitDate           *time.Time `json:"exit_date,omitempty"`

	Notes          []Note          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Attachments    []Attachment    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PriceSnapshots []PriceSnapshot `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// IsPair reports whether the idea is a pair trade.
func (i *Idea) IsPair() bool {
	return i.TradeType == metrics.TradePair
}

// IsClosed reports whether the idea has been closed or killed.
func (i *Idea) IsClosed() bool {
	return i.Status == StatusClosed || i.Status == StatusKilled
}

// Position maps the idea onto the metrics engine's input shape.
func (i *Idea) Position() metrics.Position {
	pos := metrics.Position{
		TradeType:      i.TradeType,
		EntryPrimary:   i.EntryPricePrimary,
		EntrySecondary: i.EntryPriceSecondary,
	}
	if i.PairOrientation != nil {
		pos.Orientation = *i.PairOrientation
	}
	if i.PositionSize > 0 {
		size := i.PositionSize
		pos.PositionSize = &size
	}
	return pos
}
