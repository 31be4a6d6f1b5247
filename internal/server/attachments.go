package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"research-tracker-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// saveUpload streams the multipart "file" part to the attachments directory
// under a generated name and fills in the attachment metadata.
func (h *Handler) saveUpload(r *http.Request, att *models.Attachment) (int, string) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.storage.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.storage.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, "file exceeds the upload size limit"
		}
		return http.StatusBadRequest, "invalid multipart request: " + err.Error()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return http.StatusBadRequest, "multipart field 'file' is required"
	}
	defer file.Close()

	if err := os.MkdirAll(h.storage.AttachmentsDir, 0o755); err != nil {
		h.log.Error("Failed to create attachments directory", zap.Error(err))
		return http.StatusInternalServerError, "internal error"
	}

	storageName := uuid.New().String() + filepath.Ext(header.Filename)
	storagePath := filepath.Join(h.storage.AttachmentsDir, storageName)

	written, err := copyUpload(storagePath, file)
	if err != nil {
		h.log.Error("Failed to store upload", zap.String("path", storagePath), zap.Error(err))
		return http.StatusInternalServerError, "internal error"
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	att.Filename = filepath.Base(header.Filename)
	att.MimeType = mimeType
	att.SizeBytes = written
	att.StoragePath = storagePath
	return 0, ""
}

func copyUpload(path string, src multipart.File) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return written, nil
}

func (h *Handler) uploadAttachment(w http.ResponseWriter, r *http.Request, att models.Attachment) {
	if status, msg := h.saveUpload(r, &att); status != 0 {
		writeError(w, status, msg)
		return
	}

	if err := h.db.Create(&att).Error; err != nil {
		os.Remove(att.StoragePath)
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, att)
}

func (h *Handler) listAttachments(w http.ResponseWriter, column string, ownerID uint) {
	var atts []models.Attachment
	if err := h.db.Where(column+" = ?", ownerID).Order("created_at desc").Find(&atts).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attachments": atts, "total": len(atts)})
}

// ListFolderAttachments returns a folder's attachments, newest first.
func (h *Handler) ListFolderAttachments(w http.ResponseWriter, r *http.Request) {
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
	h.listAttachments(w, "folder_id", folderID)
}

// UploadFolderAttachment stores an uploaded file against a folder.
func (h *Handler) UploadFolderAttachment(w http.ResponseWriter, r *http.Request) {
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
	h.uploadAttachment(w, r, models.Attachment{FolderID: &folderID})
}

// ListIdeaAttachments returns an idea's attachments, newest first.
func (h *Handler) ListIdeaAttachments(w http.ResponseWriter, r *http.Request) {
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
	h.listAttachments(w, "idea_id", ideaID)
}

// UploadIdeaAttachment stores an uploaded file against an idea.
func (h *Handler) UploadIdeaAttachment(w http.ResponseWriter, r *http.Request) {
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
	h.uploadAttachment(w, r, models.Attachment{IdeaID: &ideaID})
}

// DownloadAttachment serves the stored blob with its original filename.
func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid attachment id")
		return
	}

	var att models.Attachment
	if err := h.find(&att, id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", att.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+att.Filename+`"`)
	http.ServeFile(w, r, att.StoragePath)
}

// DeleteAttachment removes the metadata row and the blob on disk.
func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid attachment id")
		return
	}

	var att models.Attachment
	if err := h.find(&att, id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := h.db.Delete(&att).Error; err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := os.Remove(att.StoragePath); err != nil && !os.IsNotExist(err) {
		h.log.Warn("Failed to remove attachment blob", zap.String("path", att.StoragePath), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
