package server

import (
	"net/http"
	"time"

	"research-tracker-go/internal/models"
)

// ListSnapshots returns an idea's price snapshots, oldest first.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps, "total": len(snaps)})
}

type snapshotRequest struct {
	Timestamp      *time.Time `json:"timestamp,omitempty"`
	PricePrimary   float64    `json:"price_primary"`
	PriceSecondary *float64   `json:"price_secondary,omitempty"`
	Note           *string    `json:"note,omitempty"`
}

// CreateSnapshot records a manual price observation for an idea.
func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
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

	var req snapshotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.PricePrimary <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "price_primary must be positive")
		return
	}
	if idea.IsPair() && (req.PriceSecondary == nil || *req.PriceSecondary <= 0) {
		writeError(w, http.StatusUnprocessableEntity, "pair trade snapshot requires a positive price_secondary")
		return
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}

	snap := models.PriceSnapshot{
		IdeaID:         id,
		Timestamp:      ts,
		PricePrimary:   req.PricePrimary,
		PriceSecondary: req.PriceSecondary,
		Source:         models.SourceManual,
		Note:           req.Note,
	}
	if err := h.db.Create(&snap).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snap)
}

// BackfillPrices pulls daily closes from the provider for every day since
// the idea started that has no snapshot yet. Safe to call repeatedly.
func (h *Handler) BackfillPrices(w http.ResponseWriter, r *http.Request) {
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

	created, err := h.backfiller.BackfillIdea(r.Context(), &idea)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"created": created})
}
