package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fittrack-api/internal/domain"
	"fittrack-api/internal/metrics"
	"fittrack-api/internal/repository"
	"fittrack-api/internal/response"
	"fittrack-api/internal/storage"
)

// AttachmentHandler handles attachment retrieval and deletion. Raw storage
// paths are never exposed; blob bytes are served only through the gated
// content endpoint, which re-checks ownership on every request.
type AttachmentHandler struct {
	attachmentRepo repository.AttachmentRepository
	trainingRepo   repository.TrainingRepository
	recordRepo     repository.RecordRepository
	store          storage.Storage
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(
	attachmentRepo repository.AttachmentRepository,
	trainingRepo repository.TrainingRepository,
	recordRepo repository.RecordRepository,
	store storage.Storage,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentRepo: attachmentRepo,
		trainingRepo:   trainingRepo,
		recordRepo:     recordRepo,
		store:          store,
		metrics:        m,
		logger:         logger,
	}
}

// AttachmentResponse represents attachment metadata returned to the client
type AttachmentResponse struct {
	ID         uuid.UUID  `json:"id"`
	ParentKind string     `json:"parentKind"`
	ParentID   *uuid.UUID `json:"parentId"`
	FileName   string     `json:"fileName"`
	FileURL    string     `json:"fileUrl"`
	FileType   string     `json:"fileType"`
	MimeType   string     `json:"mimeType"`
	FileSize   int64      `json:"fileSize"`
	UploadedAt time.Time  `json:"uploadedAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

func attachmentToResponse(store storage.Storage, a *domain.MediaAttachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         a.ID,
		ParentKind: string(a.ParentKind),
		ParentID:   a.ParentID,
		FileName:   a.FileName,
		FileURL:    store.URL(a.StorageKey),
		FileType:   string(a.Category),
		MimeType:   a.MimeType,
		FileSize:   a.SizeBytes,
		UploadedAt: a.CreatedAt,
		ExpiresAt:  a.ExpiresAt,
	}
}

// GetTrainingAttachments lists attachments linked to a training owned by
// the caller
func (h *AttachmentHandler) GetTrainingAttachments(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	trainingID, ok := parseIDParam(c, "trainingId")
	if !ok {
		return
	}

	training, err := h.trainingRepo.FindByID(c.Request.Context(), trainingID)
	if err != nil {
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Training not found")
		return
	}
	if training.OwnerID != userID {
		response.SendError(c, http.StatusForbidden, response.ErrCodeForbidden, "You do not have access to this training")
		return
	}

	h.listByParent(c, domain.ParentKindTraining, trainingID)
}

// GetRecordAttachments lists attachments linked to a personal record owned
// by the caller
func (h *AttachmentHandler) GetRecordAttachments(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	recordID, ok := parseIDParam(c, "recordId")
	if !ok {
		return
	}

	record, err := h.recordRepo.FindByID(c.Request.Context(), recordID)
	if err != nil {
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Personal record not found")
		return
	}
	if record.OwnerID != userID {
		response.SendError(c, http.StatusForbidden, response.ErrCodeForbidden, "You do not have access to this record")
		return
	}

	h.listByParent(c, domain.ParentKindPersonalRecord, recordID)
}

func (h *AttachmentHandler) listByParent(c *gin.Context, kind domain.ParentKind, parentID uuid.UUID) {
	attachments, err := h.attachmentRepo.FindByParent(c.Request.Context(), kind, parentID)
	if err != nil {
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Failed to retrieve attachments")
		return
	}

	resp := make([]AttachmentResponse, len(attachments))
	for i, a := range attachments {
		resp[i] = attachmentToResponse(h.store, a)
	}
	response.SendSuccess(c, http.StatusOK, resp)
}

// GetAttachmentContent streams the blob bytes for an attachment after
// re-verifying that the caller owns it.
func (h *AttachmentHandler) GetAttachmentContent(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	attachmentID, ok := parseIDParam(c, "attachmentId")
	if !ok {
		return
	}

	attachment, err := h.attachmentRepo.FindByID(c.Request.Context(), attachmentID)
	if err != nil {
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Attachment not found")
		return
	}
	if attachment.OwnerID != userID {
		response.SendError(c, http.StatusForbidden, response.ErrCodeForbidden, "You do not have access to this attachment")
		return
	}

	reader, err := h.store.Open(c.Request.Context(), attachment.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "File content not found")
			return
		}
		h.metrics.IncrementStorageOpError("open")
		h.logger.Error("Failed to open blob",
			zap.String("attachment_id", attachmentID.String()),
			zap.Error(err),
		)
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Failed to read file")
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, attachment.SizeBytes, attachment.MimeType, reader, map[string]string{
		"Content-Disposition": `inline; filename="` + attachment.FileName + `"`,
	})
}

// DeleteAttachment removes a single attachment owned by the caller. The
// ledger row is deleted first and unconditionally; the blob delete that
// follows is best-effort, and its failure is logged and swallowed.
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	attachmentID, ok := parseIDParam(c, "attachmentId")
	if !ok {
		return
	}

	attachment, err := h.attachmentRepo.FindByID(c.Request.Context(), attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Attachment not found")
			return
		}
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Failed to look up attachment")
		return
	}
	if attachment.OwnerID != userID {
		response.SendError(c, http.StatusForbidden, response.ErrCodeForbidden, "You do not have permission to delete this attachment")
		return
	}

	if err := h.attachmentRepo.Delete(c.Request.Context(), attachmentID); err != nil {
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Failed to delete attachment")
		return
	}

	if err := h.store.Delete(c.Request.Context(), attachment.StorageKey); err != nil {
		// Orphan blob is the accepted cost of never blocking deletion on
		// filesystem cleanup
		h.metrics.IncrementStorageOpError("delete")
		h.logger.Warn("Failed to delete blob for removed attachment",
			zap.String("attachment_id", attachmentID.String()),
			zap.String("storage_key", attachment.StorageKey),
			zap.Error(err),
		)
	}

	response.SendSuccess(c, http.StatusOK, map[string]string{
		"message": "Attachment deleted successfully",
	})
}
