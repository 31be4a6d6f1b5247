package server

import (
	"net/http"
	"strings"
	"time"

	"research-tracker-go/internal/models"

	"gorm.io/gorm"
)

type folderRequest struct {
	Type            models.FolderType    `json:"type"`
	TickerPrimary   *string              `json:"ticker_primary,omitempty"`
	TickerSecondary *string              `json:"ticker_secondary,omitempty"`
	ThemeName       *string              `json:"theme_name,omitempty"`
	ThemeDate       *time.Time           `json:"theme_date,omitempty"`
	ThemeThesis     *string              `json:"theme_thesis,omitempty"`
	ThemeTickers    []models.ThemeTicker `json:"theme_tickers,omitempty"`
	ThemeIDs        []uint               `json:"theme_ids,omitempty"`
	Description     *string              `json:"description,omitempty"`
	Tags            []string             `json:"tags,omitempty"`
}

func (req *folderRequest) validate() string {
	switch req.Type {
	case models.FolderSingle:
		if req.TickerPrimary == nil || *req.TickerPrimary == "" {
			return "single folder requires ticker_primary"
		}
	case models.FolderPair:
		if req.TickerPrimary == nil || req.TickerSecondary == nil {
			return "pair folder requires ticker_primary and ticker_secondary"
		}
	case models.FolderTheme:
		if req.ThemeName == nil || *req.ThemeName == "" {
			return "theme folder requires theme_name"
		}
	default:
		return "unknown folder type: " + string(req.Type)
	}
	return ""
}

// upperTicker normalizes user-entered tickers.
func upperTicker(t *string) *string {
	if t == nil {
		return nil
	}
	u := strings.ToUpper(strings.TrimSpace(*t))
	return &u
}

func (req *folderRequest) apply(f *models.Folder) {
	f.Type = req.Type
	f.TickerPrimary = upperTicker(req.TickerPrimary)
	f.TickerSecondary = upperTicker(req.TickerSecondary)
	f.ThemeName = req.ThemeName
	f.ThemeDate = req.ThemeDate
	f.ThemeThesis = req.ThemeThesis
	f.ThemeTickers = req.ThemeTickers
	f.ThemeIDs = req.ThemeIDs
	f.Description = req.Description
	if req.Tags == nil {
		f.Tags = []string{}
	} else {
		f.Tags = req.Tags
	}
	if f.ThemeTickers == nil {
		f.ThemeTickers = []models.ThemeTicker{}
	}
	if f.ThemeIDs == nil {
		f.ThemeIDs = []uint{}
	}
}

type folderResponse struct {
	models.Folder
	Name            string   `json:"name"`
	Tickers         []string `json:"tickers"`
	IdeaCount       int      `json:"idea_count"`
	ActiveIdeaCount int      `json:"active_idea_count"`
}

func folderToResponse(f *models.Folder) folderResponse {
	active := 0
	for i := range f.Ideas {
		if !f.Ideas[i].IsClosed() {
			active++
		}
	}
	return folderResponse{
		Folder:          *f,
		Name:            f.Name(),
		Tickers:         f.Tickers(),
		IdeaCount:       len(f.Ideas),
		ActiveIdeaCount: active,
	}
}

// ListFolders returns all folders, optionally filtered by a search term
// (ticker or theme name substring) and tags.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	query := h.db.Preload("Ideas")

	if search := r.URL.Query().Get("search"); search != "" {
		term := "%" + strings.ToUpper(search) + "%"
		query = query.Where(
			"upper(ticker_primary) LIKE ? OR upper(ticker_secondary) LIKE ? OR upper(theme_name) LIKE ?",
			term, term, term,
		)
	}

	var folders []models.Folder
	if err := query.Order("ticker_primary, theme_name").Find(&folders).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	// Tag filtering happens in process: tags live in a JSON column and the
	// folder count for a single user stays small.
	tags := r.URL.Query()["tag"]
	responses := make([]folderResponse, 0, len(folders))
	for i := range folders {
		if !hasAllTags(folders[i].Tags, tags) {
			continue
		}
		responses = append(responses, folderToResponse(&folders[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{"folders": responses, "total": len(responses)})
}

func hasAllTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, t := range have {
			if t == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CreateFolder creates a folder.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	var folder models.Folder
	req.apply(&folder)
	if err := h.db.Create(&folder).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, folderToResponse(&folder))
}

// GetFolder returns one folder.
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}

	var folder models.Folder
	if err := h.db.Preload("Ideas").First(&folder, id).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folderToResponse(&folder))
}

// UpdateFolder replaces a folder's editable fields.
func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}

	var folder models.Folder
	if err := h.db.Preload("Ideas").First(&folder, id).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	var req folderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	req.apply(&folder)
	if err := h.db.Save(&folder).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folderToResponse(&folder))
}

// DeleteFolder removes a folder and everything beneath it.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}

	var folder models.Folder
	if err := h.find(&folder, id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	// sqlite does not always enforce cascades through gorm; delete children
	// explicitly inside one transaction.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var ideaIDs []uint
		if err := tx.Model(&models.Idea{}).Where("folder_id = ?", id).Pluck("id", &ideaIDs).Error; err != nil {
			return err
		}
		if len(ideaIDs) > 0 {
			if err := tx.Where("idea_id IN ?", ideaIDs).Delete(&models.PriceSnapshot{}).Error; err != nil {
				return err
			}
			if err := tx.Where("idea_id IN ?", ideaIDs).Delete(&models.Note{}).Error; err != nil {
				return err
			}
			if err := tx.Where("idea_id IN ?", ideaIDs).Delete(&models.Attachment{}).Error; err != nil {
				return err
			}
		}
		for _, child := range []any{&models.Idea{}, &models.Note{}, &models.Attachment{}, &models.Earnings{}, &models.Guidance{}} {
			if err := tx.Where("folder_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&folder).Error
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
