// Package server exposes the tracker's REST API: folders, ideas, notes,
// attachments, price snapshots, earnings, and guidance, with P&L and
// surprise math delegated to the metrics engine.
package server

import (
	"context"
	"fmt"
	"net/http"

	"research-tracker-go/internal/config"
	"research-tracker-go/internal/marketdata"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server wraps the HTTP server and its routes.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewServer creates the API server with all routes registered.
func NewServer(cfg *config.Config, logger *zap.Logger, db *gorm.DB, client marketdata.QuoteClient) *Server {
	h := NewHandler(logger, db, client, cfg.Storage)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: h.Routes(),
	}

	return &Server{
		server: server,
		logger: logger.Named("api-server"),
	}
}

// Start runs the HTTP server in a new goroutine.
func (s *Server) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

// Routes builds the API mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health)

	mux.HandleFunc("GET /api/folders", h.ListFolders)
	mux.HandleFunc("POST /api/folders", h.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", h.GetFolder)
	mux.HandleFunc("PUT /api/folders/{id}", h.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.DeleteFolder)

	mux.HandleFunc("GET /api/folders/{id}/ideas", h.ListIdeas)
	mux.HandleFunc("POST /api/folders/{id}/ideas", h.CreateIdea)
	mux.HandleFunc("GET /api/ideas/{id}", h.GetIdea)
	mux.HandleFunc("PUT /api/ideas/{id}", h.UpdateIdea)
	mux.HandleFunc("POST /api/ideas/{id}/close", h.CloseIdea)
	mux.HandleFunc("DELETE /api/ideas/{id}", h.DeleteIdea)

	mux.HandleFunc("GET /api/ideas/{id}/pnl", h.GetPnL)
	mux.HandleFunc("GET /api/ideas/{id}/pnl/history", h.GetPnLHistory)

	mux.HandleFunc("GET /api/ideas/{id}/prices", h.ListSnapshots)
	mux.HandleFunc("POST /api/ideas/{id}/prices", h.CreateSnapshot)
	mux.HandleFunc("POST /api/ideas/{id}/prices/backfill", h.BackfillPrices)

	mux.HandleFunc("GET /api/folders/{id}/earnings", h.ListEarnings)
	mux.HandleFunc("POST /api/folders/{id}/earnings", h.CreateEarnings)
	mux.HandleFunc("PUT /api/earnings/{id}", h.UpdateEarnings)
	mux.HandleFunc("DELETE /api/earnings/{id}", h.DeleteEarnings)

	mux.HandleFunc("GET /api/folders/{id}/guidance", h.ListGuidance)
	mux.HandleFunc("POST /api/folders/{id}/guidance", h.CreateGuidance)
	mux.HandleFunc("PUT /api/guidance/{id}", h.UpdateGuidance)
	mux.HandleFunc("DELETE /api/guidance/{id}", h.DeleteGuidance)

	mux.HandleFunc("GET /api/folders/{id}/notes", h.ListFolderNotes)
	mux.HandleFunc("POST /api/folders/{id}/notes", h.CreateFolderNote)
	mux.HandleFunc("GET /api/ideas/{id}/notes", h.ListIdeaNotes)
	mux.HandleFunc("POST /api/ideas/{id}/notes", h.CreateIdeaNote)
	mux.HandleFunc("PUT /api/notes/{id}", h.UpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", h.DeleteNote)

	mux.HandleFunc("GET /api/folders/{id}/attachments", h.ListFolderAttachments)
	mux.HandleFunc("POST /api/folders/{id}/attachments", h.UploadFolderAttachment)
	mux.HandleFunc("GET /api/ideas/{id}/attachments", h.ListIdeaAttachments)
	mux.HandleFunc("POST /api/ideas/{id}/attachments", h.UploadIdeaAttachment)
	mux.HandleFunc("GET /api/attachments/{id}/download", h.DownloadAttachment)
	mux.HandleFunc("DELETE /api/attachments/{id}", h.DeleteAttachment)

	return mux
}
