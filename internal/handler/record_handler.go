package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fittrack-api/internal/domain"
	"fittrack-api/internal/response"
	"fittrack-api/internal/service"
	"fittrack-api/internal/storage"
)

// RecordHandler handles personal record endpoints
type RecordHandler struct {
	recordService *service.RecordService
	store         storage.Storage
	logger        *zap.Logger
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(recordService *service.RecordService, store storage.Storage, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		store:         store,
		logger:        logger,
	}
}

// RecordRequest represents a personal record create/update request
type RecordRequest struct {
	Exercise      string      `json:"exercise" binding:"required,max=255"`
	Value         float64     `json:"value" binding:"required,gt=0"`
	Unit          string      `json:"unit" binding:"required,max=32"`
	AchievedAt    time.Time   `json:"achievedAt" binding:"required"`
	AttachmentIDs []uuid.UUID `json:"attachmentIds"`
}

// RecordResponse represents a personal record returned to the client
type RecordResponse struct {
	ID          uuid.UUID            `json:"id"`
	Exercise    string               `json:"exercise"`
	Value       float64              `json:"value"`
	Unit        string               `json:"unit"`
	AchievedAt  time.Time            `json:"achievedAt"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Attachments []AttachmentResponse `json:"attachments"`
}

func (h *RecordHandler) toResponse(r *domain.PersonalRecord) RecordResponse {
	attachments := make([]AttachmentResponse, len(r.Attachments))
	for i := range r.Attachments {
		attachments[i] = attachmentToResponse(h.store, &r.Attachments[i])
	}
	return RecordResponse{
		ID:          r.ID,
		Exercise:    r.Exercise,
		Value:       r.Value,
		Unit:        r.Unit,
		AchievedAt:  r.AchievedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Attachments: attachments,
	}
}

// Create creates a personal record and links any referenced attachments
// atomically
func (h *RecordHandler) Create(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.recordService.Create(c.Request.Context(), service.CreateRecordInput{
		Exercise:      req.Exercise,
		Value:         req.Value,
		Unit:          req.Unit,
		AchievedAt:    req.AchievedAt,
		AttachmentIDs: req.AttachmentIDs,
	}, userID)
	if err != nil {
		h.sendServiceError(c, err, "Failed to create personal record")
		return
	}

	response.SendSuccess(c, http.StatusCreated, h.toResponse(record))
}

// Get returns a single personal record owned by the caller
func (h *RecordHandler) Get(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	recordID, ok := parseIDParam(c, "recordId")
	if !ok {
		return
	}

	record, err := h.recordService.Get(c.Request.Context(), recordID, userID)
	if err != nil {
		h.sendServiceError(c, err, "Failed to retrieve personal record")
		return
	}

	response.SendSuccess(c, http.StatusOK, h.toResponse(record))
}

// List returns all personal records owned by the caller
func (h *RecordHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	records, err := h.recordService.List(c.Request.Context(), userID)
	if err != nil {
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Failed to retrieve personal records")
		return
	}

	resp := make([]RecordResponse, len(records))
	for i, r := range records {
		resp[i] = h.toResponse(r)
	}
	response.SendSuccess(c, http.StatusOK, resp)
}

// Update modifies a personal record owned by the caller
func (h *RecordHandler) Update(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	recordID, ok := parseIDParam(c, "recordId")
	if !ok {
		return
	}

	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.recordService.Update(c.Request.Context(), recordID, service.CreateRecordInput{
		Exercise:      req.Exercise,
		Value:         req.Value,
		Unit:          req.Unit,
		AchievedAt:    req.AchievedAt,
		AttachmentIDs: req.AttachmentIDs,
	}, userID)
	if err != nil {
		h.sendServiceError(c, err, "Failed to update personal record")
		return
	}

	response.SendSuccess(c, http.StatusOK, h.toResponse(record))
}

// Delete removes a personal record along with its attachments
func (h *RecordHandler) Delete(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	recordID, ok := parseIDParam(c, "recordId")
	if !ok {
		return
	}

	if err := h.recordService.Delete(c.Request.Context(), recordID, userID); err != nil {
		h.sendServiceError(c, err, "Failed to delete personal record")
		return
	}

	response.SendSuccess(c, http.StatusOK, map[string]string{
		"message": "Personal record deleted successfully",
	})
}

func (h *RecordHandler) sendServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Personal record not found")
	case errors.Is(err, service.ErrForbidden):
		response.SendError(c, http.StatusForbidden, response.ErrCodeForbidden, "You do not have access to this record")
	case errors.Is(err, service.ErrAttachmentLink):
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation,
			"One or more attachments could not be linked: they may be missing, already linked, or not yours")
	default:
		h.logger.Error(fallback, zap.Error(err))
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, fallback)
	}
}
