package models

import (
	"time"

	"gorm.io/gorm"
)

// FolderType distinguishes single-ticker, pair, and thematic folders.
type FolderType string

const (
	FolderSingle FolderType = "SINGLE"
	FolderPair   FolderType = "PAIR"
	FolderTheme  FolderType = "THEME"
)

// ThemeTicker is one entry of a theme folder's ticker basket.
type ThemeTicker struct {
	Ticker string   `json:"ticker"`
	PnL    *float64 `json:"pnl,omitempty"`
}

// Folder organizes research around a single ticker, a ticker pair, or an
// investment theme. Ideas, notes, attachments, earnings, and guidance all
// hang off a folder and are removed with it.
type Folder struct {
	gorm.Model
	Type FolderType `gorm:"not null;default:SINGLE" json:"type"`

	// SINGLE / PAIR fields
	TickerPrimary   *string `gorm:"index" json:"ticker_primary,omitempty"`
	TickerSecondary *string `gorm:"index" json:"ticker_secondary,omitempty"`

	// THEME fields
	ThemeName    *string       `gorm:"index" json:"theme_name,omitempty"`
	ThemeDate    *time.Time    `json:"theme_date,omitempty"`
	ThemeThesis  *string       `json:"theme_thesis,omitempty"`
	ThemeTickers []ThemeTicker `gorm:"serializer:json" json:"theme_tickers"`

	// Theme folders a SINGLE/PAIR folder is associated with.
	ThemeIDs []uint `gorm:"serializer:json" json:"theme_ids"`

	Description *string  `json:"description,omitempty"`
	Tags        []string `gorm:"serializer:json" json:"tags"`

	Ideas       []Idea       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Notes       []Note       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Attachments []Attachment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Earnings    []Earnings   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Guidance    []Guidance   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Name is the computed display name for the folder.
func (f *Folder) Name() string {
	switch {
	case f.Type == FolderTheme:
		if f.ThemeName != nil {
			return *f.ThemeName
		}
		return "Unnamed Theme"
	case f.Type == FolderPair && f.TickerPrimary != nil && f.TickerSecondary != nil:
		return *f.TickerPrimary + "/" + *f.TickerSecondary
	case f.TickerPrimary != nil:
		return *f.TickerPrimary
	}
	return "Unknown"
}

// Tickers lists every ticker the folder covers.
func (f *Folder) Tickers() []string {
	if f.Type == FolderTheme {
		tickers := make([]string, 0, len(f.ThemeTickers))
		for _, t := range f.ThemeTickers {
			tickers = append(tickers, t.Ticker)
		}
		return tickers
	}

	var tickers []string
	if f.TickerPrimary != nil {
		tickers = append(tickers, *f.TickerPrimary)
	}
	if f.TickerSecondary != nil {
		tickers = append(tickers, *f.TickerSecondary)
	}
	return tickers
}
