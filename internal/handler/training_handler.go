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

// TrainingHandler handles training session endpoints
type TrainingHandler struct {
	trainingService *service.TrainingService
	store           storage.Storage
	logger          *zap.Logger
}

// NewTrainingHandler creates a new TrainingHandler
func NewTrainingHandler(trainingService *service.TrainingService, store storage.Storage, logger *zap.Logger) *TrainingHandler {
	return &TrainingHandler{
		trainingService: trainingService,
		store:           store,
		logger:          logger,
	}
}

// TrainingRequest represents a training create/update request
type TrainingRequest struct {
	Title         string      `json:"title" binding:"required,max=255"`
	Notes         string      `json:"notes"`
	PerformedAt   time.Time   `json:"performedAt" binding:"required"`
	DurationMin   int         `json:"durationMin" binding:"gte=0"`
	AttachmentIDs []uuid.UUID `json:"attachmentIds"`
}

// TrainingResponse represents a training returned to the client
type TrainingResponse struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Notes       string               `json:"notes"`
	PerformedAt time.Time            `json:"performedAt"`
	DurationMin int                  `json:"durationMin"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Attachments []AttachmentResponse `json:"attachments"`
}

func (h *TrainingHandler) toResponse(t *domain.Training) TrainingResponse {
	attachments := make([]AttachmentResponse, len(t.Attachments))
	for i := range t.Attachments {
		attachments[i] = attachmentToResponse(h.store, &t.Attachments[i])
	}
	return TrainingResponse{
		ID:          t.ID,
		Title:       t.Title,
		Notes:       t.Notes,
		PerformedAt: t.PerformedAt,
		DurationMin: t.DurationMin,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Attachments: attachments,
	}
}

// Create creates a training and links any referenced attachments atomically
func (h *TrainingHandler) Create(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body: "+err.Error())
		return
	}

	training, err := h.trainingService.Create(c.Request.Context(), service.CreateTrainingInput{
		Title:         req.Title,
		Notes:         req.Notes,
		PerformedAt:   req.PerformedAt,
		DurationMin:   req.DurationMin,
		AttachmentIDs: req.AttachmentIDs,
	}, userID)
	if err != nil {
		h.sendServiceError(c, err, "Failed to create training")
		return
	}

	response.SendSuccess(c, http.StatusCreated, h.toResponse(training))
}

// Get returns a single training owned by the caller
func (h *TrainingHandler) Get(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	trainingID, ok := parseIDParam(c, "trainingId")
	if !ok {
		return
	}

	training, err := h.trainingService.Get(c.Request.Context(), trainingID, userID)
	if err != nil {
		h.sendServiceError(c, err, "Failed to retrieve training")
		return
	}

	response.SendSuccess(c, http.StatusOK, h.toResponse(training))
}

// List returns all trainings owned by the caller
func (h *TrainingHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	trainings, err := h.trainingService.List(c.Request.Context(), userID)
	if err != nil {
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Failed to retrieve trainings")
		return
	}

	resp := make([]TrainingResponse, len(trainings))
	for i, t := range trainings {
		resp[i] = h.toResponse(t)
	}
	response.SendSuccess(c, http.StatusOK, resp)
}

// Update modifies a training owned by the caller
func (h *TrainingHandler) Update(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	trainingID, ok := parseIDParam(c, "trainingId")
	if !ok {
		return
	}

	var req TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body: "+err.Error())
		return
	}

	training, err := h.trainingService.Update(c.Request.Context(), trainingID, service.CreateTrainingInput{
		Title:         req.Title,
		Notes:         req.Notes,
		PerformedAt:   req.PerformedAt,
		DurationMin:   req.DurationMin,
		AttachmentIDs: req.AttachmentIDs,
	}, userID)
	if err != nil {
		h.sendServiceError(c, err, "Failed to update training")
		return
	}

	response.SendSuccess(c, http.StatusOK, h.toResponse(training))
}

// Delete removes a training along with its attachments
func (h *TrainingHandler) Delete(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	trainingID, ok := parseIDParam(c, "trainingId")
	if !ok {
		return
	}

	if err := h.trainingService.Delete(c.Request.Context(), trainingID, userID); err != nil {
		h.sendServiceError(c, err, "Failed to delete training")
		return
	}

	response.SendSuccess(c, http.StatusOK, map[string]string{
		"message": "Training deleted successfully",
	})
}

func (h *TrainingHandler) sendServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Training not found")
	case errors.Is(err, service.ErrForbidden):
		response.SendError(c, http.StatusForbidden, response.ErrCodeForbidden, "You do not have access to this training")
	case errors.Is(err, service.ErrAttachmentLink):
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation,
			"One or more attachments could not be linked: they may be missing, already linked, or not yours")
	default:
		h.logger.Error(fallback, zap.Error(err))
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, fallback)
	}
}
