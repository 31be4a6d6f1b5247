package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"research-tracker-go/internal/metrics"
	"research-tracker-go/internal/models"

	"gorm.io/gorm"
)

type pnlResponse struct {
	IdeaID                uint              `json:"idea_id"`
	TradeType             metrics.TradeType `json:"trade_type"`
	EntryPricePrimary     float64           `json:"entry_price_primary"`
	EntryPriceSecondary   *float64          `json:"entry_price_secondary,omitempty"`
	CurrentPricePrimary   float64           `json:"current_price_primary"`
	CurrentPriceSecondary *float64          `json:"current_price_secondary,omitempty"`
	PriceTimestamp        *time.Time        `json:"price_timestamp,omitempty"`
	metrics.PnLResult
}

// currentPrices picks the price set an idea's P&L should be computed from:
// exit prices once closed, else the latest stored snapshot, else a live
// quote from the provider. The idea's Folder must be preloaded.
func (h *Handler) currentPrices(idea *models.Idea) (metrics.PricePoint, *time.Time, error) {
	if idea.IsClosed() && idea.ExitPricePrimary != nil {
		return metrics.PricePoint{
			Primary:   *idea.ExitPricePrimary,
			Secondary: idea.ExitPriceSecondary,
			Realized:  true,
		}, idea.ExitDate, nil
	}

	var snap models.PriceSnapshot
	err := h.db.Where("idea_id = ?", idea.ID).Order("timestamp desc").First(&snap).Error
	if err == nil {
		ts := snap.Timestamp
		return metrics.PricePoint{Primary: snap.PricePrimary, Secondary: snap.PriceSecondary}, &ts, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return metrics.PricePoint{}, nil, err
	}

	// No snapshots yet: go to the provider.
	if idea.Folder.TickerPrimary == nil {
		return metrics.PricePoint{}, nil, fmt.Errorf("idea %d has no primary ticker", idea.ID)
	}
	quote, err := h.quotes.GetQuote(*idea.Folder.TickerPrimary)
	if err != nil {
		return metrics.PricePoint{}, nil, err
	}
	px := metrics.PricePoint{Primary: quote.Price}
	ts := quote.Time

	if idea.IsPair() {
		if idea.Folder.TickerSecondary == nil {
			return metrics.PricePoint{}, nil, fmt.Errorf("pair idea %d has no secondary ticker", idea.ID)
		}
		secondary, err := h.quotes.GetQuote(*idea.Folder.TickerSecondary)
		if err != nil {
			return metrics.PricePoint{}, nil, err
		}
		px.Secondary = &secondary.Price
	}

	return px, &ts, nil
}

// GetPnL returns the idea's current (or realized) P&L.
func (h *Handler) GetPnL(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid idea id")
		return
	}

	var idea models.Idea
	if err := h.db.Preload("Folder").First(&idea, id).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	px, ts, err := h.currentPrices(&idea)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	result, err := metrics.ComputePnL(idea.Position(), px)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pnlResponse{
		IdeaID:                idea.ID,
		TradeType:             idea.TradeType,
		EntryPricePrimary:     idea.EntryPricePrimary,
		EntryPriceSecondary:   idea.EntryPriceSecondary,
		CurrentPricePrimary:   px.Primary,
		CurrentPriceSecondary: px.Secondary,
		PriceTimestamp:        ts,
		PnLResult:             result,
	})
}

type pnlHistoryResponse struct {
	IdeaID              uint                   `json:"idea_id"`
	TradeType           metrics.TradeType      `json:"trade_type"`
	EntryPricePrimary   float64                `json:"entry_price_primary"`
	EntryPriceSecondary *float64               `json:"entry_price_secondary,omitempty"`
	History             []metrics.HistoryPoint `json:"history"`
}

// GetPnLHistory returns the P&L series over the idea's stored snapshots.
func (h *Handler) GetPnLHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid idea id")
		return
	}

	var idea models.Idea
	if err := h.find(&idea, id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	var snaps []models.PriceSnapshot
	if err := h.db.Where("idea_id = ?", id).Order("timestamp asc").Find(&snaps).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	series := make([]metrics.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		series = append(series, metrics.Snapshot{
			Time:      s.Timestamp,
			Primary:   s.PricePrimary,
			Secondary: s.PriceSecondary,
		})
	}

	writeJSON(w, http.StatusOK, pnlHistoryResponse{
		IdeaID:              idea.ID,
		TradeType:           idea.TradeType,
		EntryPricePrimary:   idea.EntryPricePrimary,
		EntryPriceSecondary: idea.EntryPriceSecondary,
		History:             metrics.ComputePnLHistory(idea.Position(), series),
	})
}
