package models

import (
	"time"

	"gorm.io/gorm"
)

// PriceSource says where a snapshot's prices came from.
type PriceSource string

const (
	SourceProvider PriceSource = "PROVIDER"
	SourceManual   PriceSource = "MANUAL"
)

// PriceSnapshot is one dated price observation for an idea, carrying both
// legs for pair trades. One snapshot per idea per timestamp.
type PriceSnapshot struct {
	gorm.Model
	IdeaID    uint      `gorm:"not null;index;uniqueIndex:idx_idea_timestamp" json:"idea_id"`
	Timestamp time.Time `gorm:"not null;index;uniqueIndex:idx_idea_timestamp" json:"timestamp"`

	PricePrimary   float64     `gorm:"not null" json:"price_primary"`
	PriceSecondary *float64    `json:"price_secondary,omitempty"`
	Source         PriceSource `gorm:"not null;default:MANUAL" json:"source"`
	Note           *string     `json:"note,omitempty"`
}
