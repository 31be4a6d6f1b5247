package server

import (
	"net/http"
	"strings"
	"time"

	"research-tracker-go/internal/metrics"
	"research-tracker-go/internal/models"
)

// guidanceRequest carries values in display units for the row's metric
// (EPS as entered, everything else in millions).
type guidanceRequest struct {
	Ticker         string         `json:"ticker"`
	Period         string         `json:"period"`
	Metric         metrics.Metric `json:"metric"`
	GuidancePeriod string         `json:"guidance_period"`

	GuidanceLow   *float64 `json:"guidance_low,omitempty"`
	GuidanceHigh  *float64 `json:"guidance_high,omitempty"`
	GuidancePoint *float64 `json:"guidance_point,omitempty"`
	ActualResult  *float64 `json:"actual_result,omitempty"`

	Notes *string `json:"notes,omitempty"`
}

func (req *guidanceRequest) validate() string {
	if strings.TrimSpace(req.Ticker) == "" {
		return "ticker is required"
	}
	if strings.TrimSpace(req.Period) == "" {
		return "period is required"
	}
	if strings.TrimSpace(req.GuidancePeriod) == "" {
		return "guidance_period is required"
	}
	switch req.Metric {
	case metrics.MetricEPS, metrics.MetricRevenue, metrics.MetricEBITDA, metrics.MetricFCF, metrics.MetricOther:
	default:
		return "unknown metric: " + string(req.Metric)
	}

	hasRange := req.GuidanceLow != nil || req.GuidanceHigh != nil
	if hasRange && (req.GuidanceLow == nil || req.GuidanceHigh == nil) {
		return "guidance range requires both guidance_low and guidance_high"
	}
	if hasRange && req.GuidancePoint != nil {
		return "guidance is either a range or a point, not both"
	}
	if req.GuidanceLow != nil && req.GuidanceHigh != nil && *req.GuidanceLow > *req.GuidanceHigh {
		return "guidance_low must not exceed guidance_high"
	}
	return ""
}

func (req *guidanceRequest) apply(g *models.Guidance) {
	g.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	g.Period = req.Period
	g.Metric = req.Metric
	g.GuidancePeriod = req.GuidancePeriod
	g.GuidanceLow = metrics.ToStorageUnitsOpt(req.GuidanceLow, req.Metric)
	g.GuidanceHigh = metrics.ToStorageUnitsOpt(req.GuidanceHigh, req.Metric)
	g.GuidancePoint = metrics.ToStorageUnitsOpt(req.GuidancePoint, req.Metric)
	g.ActualResult = metrics.ToStorageUnitsOpt(req.ActualResult, req.Metric)
	g.Notes = req.Notes
}

type guidanceResponse struct {
	ID             uint           `json:"id"`
	FolderID       uint           `json:"folder_id"`
	Ticker         string         `json:"ticker"`
	Period         string         `json:"period"`
	Metric         metrics.Metric `json:"metric"`
	GuidancePeriod string         `json:"guidance_period"`

	GuidanceLow   *float64 `json:"guidance_low,omitempty"`
	GuidanceHigh  *float64 `json:"guidance_high,omitempty"`
	GuidancePoint *float64 `json:"guidance_point,omitempty"`
	ActualResult  *float64 `json:"actual_result,omitempty"`

	GuidanceMidpoint *float64          `json:"guidance_midpoint,omitempty"`
	VsLow            *float64          `json:"vs_guidance_low,omitempty"`
	VsHigh           *float64          `json:"vs_guidance_high,omitempty"`
	VsMidpoint       *metrics.Surprise `json:"vs_guidance_midpoint,omitempty"`

	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// absDelta is actual − bound, in display units, when both are present.
func absDelta(actual, bound *float64, m metrics.Metric) *float64 {
	if s := metrics.ComputeSurprise(actual, bound); s != nil {
		d := metrics.ToDisplayUnits(s.Absolute, m)
		return &d
	}
	return nil
}

func guidanceToResponse(g *models.Guidance) guidanceResponse {
	resp := guidanceResponse{
		ID:             g.ID,
		FolderID:       g.FolderID,
		Ticker:         g.Ticker,
		Period:         g.Period,
		Metric:         g.Metric,
		GuidancePeriod: g.GuidancePeriod,
		GuidanceLow:    metrics.ToDisplayUnitsOpt(g.GuidanceLow, g.Metric),
		GuidanceHigh:   metrics.ToDisplayUnitsOpt(g.GuidanceHigh, g.Metric),
		GuidancePoint:  metrics.ToDisplayUnitsOpt(g.GuidancePoint, g.Metric),
		ActualResult:   metrics.ToDisplayUnitsOpt(g.ActualResult, g.Metric),
		Notes:          g.Notes,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}

	reference := g.Reference() // range midpoint, else the point value
	resp.GuidanceMidpoint = metrics.ToDisplayUnitsOpt(reference, g.Metric)
	resp.VsLow = absDelta(g.ActualResult, g.GuidanceLow, g.Metric)
	resp.VsHigh = absDelta(g.ActualResult, g.GuidanceHigh, g.Metric)

	if s := metrics.ComputeVsGuidance(g.ActualResult, reference); s != nil {
		resp.VsMidpoint = &metrics.Surprise{
			Absolute: metrics.ToDisplayUnits(s.Absolute, g.Metric),
			Percent:  s.Percent,
		}
	}

	return resp
}

// ListGuidance returns a folder's guidance rows.
func (h *Handler) ListGuidance(w http.ResponseWriter, r *http.Request) {
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
	if ticker := r.URL.Query().Get("ticker"); ticker != "" {
		query = query.Where("ticker = ?", strings.ToUpper(ticker))
	}

	var rows []models.Guidance
	if err := query.Order("period desc, metric").Find(&rows).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	responses := make([]guidanceResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, guidanceToResponse(&rows[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"guidance": responses, "total": len(responses)})
}

// CreateGuidance creates a guidance row in a folder.
func (h *Handler) CreateGuidance(w http.ResponseWriter, r *http.Request) {
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

	var req guidanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	row := models.Guidance{FolderID: folderID}
	req.apply(&row)
	if err := h.db.Create(&row).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, guidanceToResponse(&row))
}

// UpdateGuidance replaces a guidance row's fields.
func (h *Handler) UpdateGuidance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid guidance id")
		return
	}

	var row models.Guidance
	if err := h.find(&row, id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	var req guidanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	req.apply(&row)
	if err := h.db.Save(&row).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, guidanceToResponse(&row))
}

// DeleteGuidance removes a guidance row.
func (h *Handler) DeleteGuidance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid guidance id")
		return
	}

	var row models.Guidance
	if err := h.find(&row, id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := h.db.Delete(&row).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
