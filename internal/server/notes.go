package server

import (
	"net/http"
	"strings"

	"research-tracker-go/internal/models"
)

type noteRequest struct {
	NoteType  *models.NoteType `json:"note_type,omitempty"`
	ContentMD string           `json:"content_md"`
}

func (req *noteRequest) validate() string {
	if strings.TrimSpace(req.ContentMD) == "" {
		return "content_md is required"
	}
	if req.NoteType != nil {
		switch *req.NoteType {
		case models.NoteGeneral, models.NoteEarnings, models.NoteChannelCheck,
			models.NoteValuation, models.NoteRisk, models.NotePostmortem:
		default:
			return "unknown note_type: " + string(*req.NoteType)
		}
	}
	return ""
}

func (req *noteRequest) apply(note *models.Note) {
	if req.NoteType != nil {
		note.NoteType = *req.NoteType
	}
	note.ContentMD = req.ContentMD
}

func (h *Handler) listNotes(w http.ResponseWriter, column string, ownerID uint) {
	var notes []models.Note
	if err := h.db.Where(column+" = ?", ownerID).Order("created_at desc").Find(&notes).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes, "total": len(notes)})
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request, note models.Note) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	req.apply(&note)
	if err := h.db.Create(&note).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// ListFolderNotes returns a folder's notes, newest first.
func (h *Handler) ListFolderNotes(w http.ResponseWriter, r *http.Request) {
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
	h.listNotes(w, "folder_id", folderID)
}

// CreateFolderNote attaches a note to a folder.
func (h *Handler) CreateFolderNote(w http.ResponseWriter, r *http.Request) {
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
	h.createNote(w, r, models.Note{FolderID: &folderID, NoteType: models.NoteGeneral})
}

// ListIdeaNotes returns an idea's notes, newest first.
func (h *Handler) ListIdeaNotes(w http.ResponseWriter, r *http.Request) {
	ideaID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid idea id")
		return
	}

	var idea models.Idea
	if err := h.find(&idea, ideaID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.listNotes(w, "idea_id", ideaID)
}

// CreateIdeaNote attaches a note to an idea.
func (h *Handler) CreateIdeaNote(w http.ResponseWriter, r *http.Request) {
	ideaID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid idea id")
		return
	}

	var idea models.Idea
	if err := h.find(&idea, ideaID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.createNote(w, r, models.Note{IdeaID: &ideaID, NoteType: models.NoteGeneral})
}

// UpdateNote edits a note's type or content.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var note models.Note
	if err := h.find(&note, id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	req.apply(&note)
	if err := h.db.Save(&note).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote removes a note.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var note models.Note
	if err := h.find(&note, id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := h.db.Delete(&note).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
