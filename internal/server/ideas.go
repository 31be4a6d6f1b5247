package server

import (
	"net/http"
	"time"

	"research-tracker-go/internal/metrics"
	"research-tracker-go/internal/models"

	"gorm.io/gorm"
)

type ideaRequest struct {
	Title           string                   `json:"title"`
	TradeType       metrics.TradeType        `json:"trade_type"`
	PairOrientation *metrics.PairOrientation `json:"pair_orientation,omitempty"`
	Status          *models.IdeaStatus       `json:"status,omitempty"`
	StartDate       time.Time                `json:"start_date"`

	EntryPricePrimary   float64         `json:"entry_price_primary"`
	EntryPriceSecondary *float64        `json:"entry_price_secondary,omitempty"`
	PositionSize        *float64        `json:"position_size,omitempty"`
	Horizon             *models.Horizon `json:"horizon,omitempty"`

	ThesisMD       *string  `json:"thesis_md,omitempty"`
	Catalysts      []string `json:"catalysts,omitempty"`
	Risks          []string `json:"risks,omitempty"`
	KillCriteriaMD *string  `json:"kill_criteria_md,omitempty"`

	TargetPricePrimary   *float64 `json:"target_price_primary,omitempty"`
	StopLevelPrimary     *float64 `json:"stop_level_primary,omitempty"`
	TargetPriceSecondary *float64 `json:"target_price_secondary,omitempty"`
	StopLevelSecondary   *float64 `json:"stop_level_secondary,omitempty"`
}

func (req *ideaRequest) validate() string {
	if req.Title == "" {
		return "title is required"
	}
	if req.EntryPricePrimary <= 0 {
		return "entry_price_primary must be positive"
	}
	switch req.TradeType {
	case metrics.TradeLong, metrics.TradeShort:
	case metrics.TradePair:
		if req.EntryPriceSecondary == nil || *req.EntryPriceSecondary <= 0 {
			return "pair trade requires a positive entry_price_secondary"
		}
		if req.PairOrientation == nil {
			return "pair trade requires pair_orientation"
		}
	default:
		return "unknown trade_type: " + string(req.TradeType)
	}
	return ""
}

func (req *ideaRequest) apply(idea *models.Idea) {
	idea.Title = req.Title
	idea.TradeType = req.TradeType
	idea.PairOrientation = req.PairOrientation
	if req.Status != nil {
		idea.Status = *req.Status
	}
	idea.StartDate = req.StartDate
	idea.EntryPricePrimary = req.EntryPricePrimary
	idea.EntryPriceSecondary = req.EntryPriceSecondary
	if req.PositionSize != nil {
		idea.PositionSize = *req.PositionSize
	}
	if req.Horizon != nil {
		idea.Horizon = *req.Horizon
	}
	idea.ThesisMD = req.ThesisMD
	idea.KillCriteriaMD = req.KillCriteriaMD
	if req.Catalysts == nil {
		idea.Catalysts = []string{}
	} else {
		idea.Catalysts = req.Catalysts
	}
	if req.Risks == nil {
		idea.Risks = []string{}
	} else {
		idea.Risks = req.Risks
	}
	idea.TargetPricePrimary = req.TargetPricePrimary
	idea.StopLevelPrimary = req.StopLevelPrimary
	idea.TargetPriceSecondary = req.TargetPriceSecondary
	idea.StopLevelSecondary = req.StopLevelSecondary
}

// ListIdeas returns a folder's ideas, newest first.
func (h *Handler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	folderID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}

	var folder models.Folder
	if err := h.find(&folder, folderID); err != nil {
		h.writeDomainError(w, err)
		return
	}

	query := h.db.Where("folder_id = ?", folderID)
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var ideas []models.Idea
	if err := query.Order("created_at desc").Find(&ideas).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ideas": ideas, "total": len(ideas)})
}

// CreateIdea creates an idea inside a folder.
func (h *Handler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	folderID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}

	var folder models.Folder
	if err := h.find(&folder, folderID); err != nil {
		h.writeDomainError(w, err)
		return
	}

	var req ideaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if req.TradeType == metrics.TradePair && folder.Type != models.FolderPair {
		writeError(w, http.StatusUnprocessableEntity, "pair trades belong in a pair folder")
		return
	}

	idea := models.Idea{FolderID: folderID, Status: models.StatusDraft, Horizon: models.HorizonOther}
	req.apply(&idea)
	if err := h.db.Create(&idea).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, idea)
}

// GetIdea returns one idea.
func (h *Handler) GetIdea(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, idea)
}

// UpdateIdea replaces an idea's editable fields.
func (h *Handler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
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

	var req ideaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	req.apply(&idea)
	if err := h.db.Save(&idea).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

type closeIdeaRequest struct {
	ExitPricePrimary   float64    `json:"exit_price_primary"`
	ExitPriceSecondary *float64   `json:"exit_price_secondary,omitempty"`
	ExitDate           *time.Time `json:"exit_date,omitempty"`
	// Killed marks the close as a kill (thesis broken) rather than a
	// normal exit.
	Killed bool `json:"killed,omitempty"`
}

// CloseIdea closes (or kills) an idea with its exit prices. Realized P&L is
// computed from these prices from now on.
func (h *Handler) CloseIdea(w http.ResponseWriter, r *http.Request) {
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
	if idea.IsClosed() {
		writeError(w, http.StatusConflict, "idea is already closed")
		return
	}

	var req closeIdeaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ExitPricePrimary <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "exit_price_primary must be positive")
		return
	}
	if idea.IsPair() && (req.ExitPriceSecondary == nil || *req.ExitPriceSecondary <= 0) {
		writeError(w, http.StatusUnprocessableEntity, "pair trade requires a positive exit_price_secondary")
		return
	}

	idea.ExitPricePrimary = &req.ExitPricePrimary
	idea.ExitPriceSecondary = req.ExitPriceSecondary
	if req.ExitDate != nil {
		idea.ExitDate = req.ExitDate
	} else {
		now := time.Now().UTC()
		idea.ExitDate = &now
	}
	if req.Killed {
		idea.Status = models.StatusKilled
	} else {
		idea.Status = models.StatusClosed
	}

	if err := h.db.Save(&idea).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

// DeleteIdea removes an idea and its snapshots, notes, and attachments.
func (h *Handler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
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

	err = h.db.Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&models.PriceSnapshot{}, &models.Note{}, &models.Attachment{}} {
			if err := tx.Where("idea_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&idea).Error
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
