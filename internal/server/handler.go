package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"research-tracker-go/internal/config"
	"research-tracker-go/internal/marketdata"
	"research-tracker-go/internal/metrics"
	"research-tracker-go/internal/snapshot"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler holds dependencies for the API endpoints.
type Handler struct {
	log        *zap.Logger
	db         *gorm.DB
	quotes     marketdata.QuoteClient
	backfiller *snapshot.Backfiller
	storage    config.Storage
}

// NewHandler creates a new Handler.
func NewHandler(log *zap.Logger, db *gorm.DB, quotes marketdata.QuoteClient, storage config.Storage) *Handler {
	return &Handler{
		log:        log,
		db:         db,
		quotes:     quotes,
		backfiller: snapshot.NewBackfiller(log, db, quotes),
		storage:    storage,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps lower-layer failures onto HTTP statuses: engine
// input violations become 422, missing rows 404, everything else 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var invalid *metrics.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusUnprocessableEntity, invalid.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.log.Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON parses a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// pathID extracts the {id} path segment as a database ID.
func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// find loads a row by primary key into dest, which must be a model pointer.
func (h *Handler) find(dest any, id uint) error {
	return h.db.First(dest, id).Error
}
