package server

import (
	"net/http"
	"strings"
	"time"

	"research-tracker-go/internal/metrics"
	"research-tracker-go/internal/models"
)

// earningsRequest carries values in display units: EPS as entered,
// revenue/EBITDA/FCF in millions. Conversion to raw storage units happens
// here, once, before anything touches the database.
type earningsRequest struct {
	Ticker        string             `json:"ticker"`
	PeriodType    *models.PeriodType `json:"period_type,omitempty"`
	FiscalQuarter string             `json:"fiscal_quarter"`
	Period        *string            `json:"period,omitempty"`
	PeriodEndDate *time.Time         `json:"period_end_date,omitempty"`

	EstimateEPS   *float64 `json:"estimate_eps,omitempty"`
	ActualEPS     *float64 `json:"actual_eps,omitempty"`
	MyEstimateEPS *float64 `json:"my_estimate_eps,omitempty"`

	EstimateRevMM   *float64 `json:"estimate_rev_mm,omitempty"`
	ActualRevMM     *float64 `json:"actual_rev_mm,omitempty"`
	MyEstimateRevMM *float64 `json:"my_estimate_rev_mm,omitempty"`

	EstimateEBITDAMM   *float64 `json:"estimate_ebitda_mm,omitempty"`
	ActualEBITDAMM     *float64 `json:"actual_ebitda_mm,omitempty"`
	MyEstimateEBITDAMM *float64 `json:"my_estimate_ebitda_mm,omitempty"`

	EstimateFCFMM   *float64 `json:"estimate_fcf_mm,omitempty"`
	ActualFCFMM     *float64 `json:"actual_fcf_mm,omitempty"`
	MyEstimateFCFMM *float64 `json:"my_estimate_fcf_mm,omitempty"`

	Notes *string `json:"notes,omitempty"`
}

func (req *earningsRequest) validate() string {
	if strings.TrimSpace(req.Ticker) == "" {
		return "ticker is required"
	}
	if strings.TrimSpace(req.FiscalQuarter) == "" {
		return "fiscal_quarter is required"
	}
	return ""
}

func (req *earningsRequest) apply(e *models.Earnings) {
	e.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	if req.PeriodType != nil {
		e.PeriodType = *req.PeriodType
	}
	e.FiscalQuarter = req.FiscalQuarter
	e.Period = req.Period
	e.PeriodEndDate = req.PeriodEndDate

	e.EstimateEPS = req.EstimateEPS
	e.ActualEPS = req.ActualEPS
	e.MyEstimateEPS = req.MyEstimateEPS

	e.EstimateRev = metrics.ToStorageUnitsOpt(req.EstimateRevMM, metrics.MetricRevenue)
	e.ActualRev = metrics.ToStorageUnitsOpt(req.ActualRevMM, metrics.MetricRevenue)
	e.MyEstimateRev = metrics.ToStorageUnitsOpt(req.MyEstimateRevMM, metrics.MetricRevenue)

	e.EstimateEBITDA = metrics.ToStorageUnitsOpt(req.EstimateEBITDAMM, metrics.MetricEBITDA)
	e.ActualEBITDA = metrics.ToStorageUnitsOpt(req.ActualEBITDAMM, metrics.MetricEBITDA)
	e.MyEstimateEBITDA = metrics.ToStorageUnitsOpt(req.MyEstimateEBITDAMM, metrics.MetricEBITDA)

	e.EstimateFCF = metrics.ToStorageUnitsOpt(req.EstimateFCFMM, metrics.MetricFCF)
	e.ActualFCF = metrics.ToStorageUnitsOpt(req.ActualFCFMM, metrics.MetricFCF)
	e.MyEstimateFCF = metrics.ToStorageUnitsOpt(req.MyEstimateFCFMM, metrics.MetricFCF)

	e.Notes = req.Notes
}

// metricLine is one metric's estimates, actual, and surprise, all in
// display units.
type metricLine struct {
	Estimate   *float64          `json:"estimate,omitempty"`
	MyEstimate *float64          `json:"my_estimate,omitempty"`
	Actual     *float64          `json:"actual,omitempty"`
	Surprise   *metrics.Surprise `json:"surprise,omitempty"`
}

// makeLine computes the surprise on raw storage values, then converts
// everything to display units for the response.
func makeLine(estimate, myEstimate, actual *float64, m metrics.Metric) metricLine {
	l := metricLine{
		Estimate:   metrics.ToDisplayUnitsOpt(estimate, m),
		MyEstimate: metrics.ToDisplayUnitsOpt(myEstimate, m),
		Actual:     metrics.ToDisplayUnitsOpt(actual, m),
	}
	if s := metrics.ComputeSurprise(actual, estimate); s != nil {
		l.Surprise = &metrics.Surprise{
			Absolute: metrics.ToDisplayUnits(s.Absolute, m),
			Percent:  s.Percent,
		}
	}
	return l
}

type earningsResponse struct {
	ID            uint               `json:"id"`
	FolderID      uint               `json:"folder_id"`
	Ticker        string             `json:"ticker"`
	PeriodType    models.PeriodType  `json:"period_type"`
	FiscalQuarter string             `json:"fiscal_quarter"`
	Period        *string            `json:"period,omitempty"`
	PeriodEndDate *time.Time         `json:"period_end_date,omitempty"`
	EPS           metricLine         `json:"eps"`
	Revenue       metricLine         `json:"revenue"`
	EBITDA        metricLine         `json:"ebitda"`
	FCF           metricLine         `json:"fcf"`
	Notes         *string            `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func earningsToResponse(e *models.Earnings) earningsResponse {
	return earningsResponse{
		ID:            e.ID,
		FolderID:      e.FolderID,
		Ticker:        e.Ticker,
		PeriodType:    e.PeriodType,
		FiscalQuarter: e.FiscalQuarter,
		Period:        e.Period,
		PeriodEndDate: e.PeriodEndDate,
		EPS:           makeLine(e.EstimateEPS, e.MyEstimateEPS, e.ActualEPS, metrics.MetricEPS),
		Revenue:       makeLine(e.EstimateRev, e.MyEstimateRev, e.ActualRev, metrics.MetricRevenue),
		EBITDA:        makeLine(e.EstimateEBITDA, e.MyEstimateEBITDA, e.ActualEBITDA, metrics.MetricEBITDA),
		FCF:           makeLine(e.EstimateFCF, e.MyEstimateFCF, e.ActualFCF, metrics.MetricFCF),
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ListEarnings returns a folder's earnings rows.
func (h *Handler) ListEarnings(w http.ResponseWriter, r *http.Request) {
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

	var rows []models.Earnings
	if err := query.Order("fiscal_quarter desc").Find(&rows).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	responses := make([]earningsResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, earningsToResponse(&rows[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"earnings": responses, "total": len(responses)})
}

// CreateEarnings creates an earnings row in a folder.
func (h *Handler) CreateEarnings(w http.ResponseWriter, r *http.Request) {
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

	var req earningsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	row := models.Earnings{FolderID: folderID, PeriodType: models.PeriodQuarterly}
	req.apply(&row)
	if err := h.db.Create(&row).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, earningsToResponse(&row))
}

// UpdateEarnings replaces an earnings row's fields.
func (h *Handler) UpdateEarnings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid earnings id")
		return
	}

	var row models.Earnings
	if err := h.find(&row, id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	var req earningsRequest
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

	writeJSON(w, http.StatusOK, earningsToResponse(&row))
}

// DeleteEarnings removes an earnings row.
func (h *Handler) DeleteEarnings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid earnings id")
		return
	}

	var row models.Earnings
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
