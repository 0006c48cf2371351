package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fittrack-api/internal/metrics"
	"fittrack-api/internal/response"
	"fittrack-api/internal/service"
)

// UploadHandler handles media upload and storage usage requests
type UploadHandler struct {
	uploadService *service.UploadService
	quota         *service.QuotaAccountant
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(
	uploadService *service.UploadService,
	quota *service.QuotaAccountant,
	m *metrics.Metrics,
	logger *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		quota:         quota,
		metrics:       m,
		logger:        logger,
	}
}

// UploadResponse is the success payload for an accepted upload
type UploadResponse struct {
	ID        uuid.UUID  `json:"id"`
	FileName  string     `json:"fileName"`
	FileURL   string     `json:"fileUrl"`
	FileType  string     `json:"fileType"`
	MimeType  string     `json:"mimeType"`
	FileSize  int64      `json:"fileSize"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Upload accepts a multipart upload with fields "file", "entityType" and
// optional "entityId". The file is verified server-side; the declared
// content type is only compared against the detected one, never trusted.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.SendError(c, http.StatusBadRequest, string(service.ErrKindMissingFile), "No file provided")
		return
	}

	entityType := c.PostForm("entityType")

	var parentID *uuid.UUID
	if raw := c.PostForm("entityId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid entity ID")
			return
		}
		parentID = &id
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.SendError(c, http.StatusBadRequest, string(service.ErrKindMissingFile), "Failed to read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.SendError(c, http.StatusBadRequest, string(service.ErrKindMissingFile), "Failed to read file")
		return
	}

	attachment, err := h.uploadService.Upload(c.Request.Context(), service.UploadInput{
		Data:         data,
		FileName:     fileHeader.Filename,
		DeclaredMime: fileHeader.Header.Get("Content-Type"),
		DeclaredSize: fileHeader.Size,
		EntityType:   entityType,
		ParentID:     parentID,
		OwnerID:      userID,
	})
	if err != nil {
		h.sendUploadError(c, err)
		return
	}

	h.metrics.IncrementUploadAccepted(attachment.Category, attachment.SizeBytes)

	response.SendSuccess(c, http.StatusCreated, UploadResponse{
		ID:        attachment.ID,
		FileName:  attachment.FileName,
		FileURL:   h.uploadService.FileURL(attachment),
		FileType:  string(attachment.Category),
		MimeType:  attachment.MimeType,
		FileSize:  attachment.SizeBytes,
		ParentID:  attachment.ParentID,
		ExpiresAt: attachment.ExpiresAt,
	})
}

// StorageUsageResponse reports an owner's quota consumption
type StorageUsageResponse struct {
	UsedBytes int64 `json:"usedBytes"`
	CapBytes  int64 `json:"capBytes"`
}

// GetStorageUsage returns the caller's aggregate stored bytes and cap
func (h *UploadHandler) GetStorageUsage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	used, err := h.quota.CurrentUsage(c.Request.Context(), userID)
	if err != nil {
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Failed to compute storage usage")
		return
	}

	response.SendSuccess(c, http.StatusOK, StorageUsageResponse{
		UsedBytes: used,
		CapBytes:  h.quota.Cap(),
	})
}

// sendUploadError maps a typed upload rejection to an HTTP response.
// Validation kinds are surfaced with their message; infrastructure failures
// get a generic message with no internal detail.
func (h *UploadHandler) sendUploadError(c *gin.Context, err error) {
	ue, ok := service.AsUploadError(err)
	if !ok {
		h.logger.Error("Upload failed", zap.Error(err))
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Failed to process upload")
		return
	}

	h.metrics.IncrementUploadRejected(string(ue.Kind))

	switch ue.Kind {
	case service.ErrKindParentNotFound:
		response.SendError(c, http.StatusNotFound, string(ue.Kind), ue.Message)
	case service.ErrKindFileTooLarge:
		response.SendError(c, http.StatusRequestEntityTooLarge, string(ue.Kind), ue.Message)
	case service.ErrKindStorageWriteFailed:
		h.metrics.IncrementStorageOpError("put")
		h.logger.Error("Storage write failed", zap.Error(err))
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Failed to store file")
	default:
		response.SendError(c, http.StatusBadRequest, string(ue.Kind), ue.Message)
	}
}
