package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fittrack-api/internal/domain"
	"fittrack-api/internal/repository"
	"fittrack-api/internal/storage"
)

// CreateTrainingInput carries a training create/update request.
type CreateTrainingInput struct {
	Title         string
	Notes         string
	PerformedAt   time.Time
	DurationMin   int
	AttachmentIDs []uuid.UUID
}

// TrainingService implements training CRUD. Creating or updating a training
// and linking its attachments happen in one transaction: both commit or both
// roll back, so a training never references attachments that failed to link.
type TrainingService struct {
	db             *gorm.DB
	trainingRepo   repository.TrainingRepository
	attachmentRepo repository.AttachmentRepository
	store          storage.Storage
	logger         *zap.Logger
}

// NewTrainingService creates a new TrainingService
func NewTrainingService(
	db *gorm.DB,
	trainingRepo repository.TrainingRepository,
	attachmentRepo repository.AttachmentRepository,
	store storage.Storage,
	logger *zap.Logger,
) *TrainingService {
	return &TrainingService{
		db:             db,
		trainingRepo:   trainingRepo,
		attachmentRepo: attachmentRepo,
		store:          store,
		logger:         logger,
	}
}

// Create inserts a training and links the given unlinked attachments to it
// atomically.
func (s *TrainingService) Create(ctx context.Context, input CreateTrainingInput, ownerID uuid.UUID) (*domain.Training, error) {
	training := &domain.Training{
		BaseModel:   domain.BaseModel{ID: uuid.New()},
		OwnerID:     ownerID,
		Title:       input.Title,
		Notes:       input.Notes,
		PerformedAt: input.PerformedAt,
		DurationMin: input.DurationMin,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.trainingRepo.CreateTx(tx, training); err != nil {
			return fmt.Errorf("failed to create training: %w", err)
		}
		if err := s.attachmentRepo.LinkTx(tx, input.AttachmentIDs, domain.ParentKindTraining, training.ID, ownerID); err != nil {
			return fmt.Errorf("%w: %v", ErrAttachmentLink, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, training.ID, ownerID)
}

// Update modifies a training owned by ownerID and links any additional
// attachments in the same transaction.
func (s *TrainingService) Update(ctx context.Context, id uuid.UUID, input CreateTrainingInput, ownerID uuid.UUID) (*domain.Training, error) {
	training, err := s.trainingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up training: %w", err)
	}
	if training.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	training.Title = input.Title
	training.Notes = input.Notes
	training.PerformedAt = input.PerformedAt
	training.DurationMin = input.DurationMin

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.trainingRepo.UpdateTx(tx, training); err != nil {
			return fmt.Errorf("failed to update training: %w", err)
		}
		if err := s.attachmentRepo.LinkTx(tx, input.AttachmentIDs, domain.ParentKindTraining, training.ID, ownerID); err != nil {
			return fmt.Errorf("%w: %v", ErrAttachmentLink, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, training.ID, ownerID)
}

// Get returns a training owned by ownerID with its attachments loaded.
func (s *TrainingService) Get(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*domain.Training, error) {
	training, err := s.trainingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up training: %w", err)
	}
	if training.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	attachments, err := s.attachmentRepo.FindByParent(ctx, domain.ParentKindTraining, training.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attachments: %w", err)
	}
	training.Attachments = toAttachmentValues(attachments)
	return training, nil
}

// List returns all trainings owned by ownerID.
func (s *TrainingService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Training, error) {
	return s.trainingRepo.FindByOwner(ctx, ownerID)
}

// Delete removes a training and cascades over its attachment rows in one
// transaction, then deletes the blobs best-effort after the commit. A blob
// delete failure is logged and swallowed; the metadata is already gone and
// stays authoritative.
func (s *TrainingService) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	training, err := s.trainingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up training: %w", err)
	}
	if training.OwnerID != ownerID {
		return ErrForbidden
	}

	var blobKeys []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keys, err := s.attachmentRepo.DeleteByParentTx(tx, domain.ParentKindTraining, id)
		if err != nil {
			return fmt.Errorf("failed to delete attachments: %w", err)
		}
		blobKeys = keys
		return s.trainingRepo.DeleteTx(tx, id)
	})
	if err != nil {
		return err
	}

	deleteBlobs(ctx, s.store, blobKeys, s.logger)
	return nil
}

// deleteBlobs removes blobs after their ledger rows are committed-deleted.
// Failures produce orphan blobs, tolerated and never surfaced to the caller.
func deleteBlobs(ctx context.Context, store storage.Storage, keys []string, logger *zap.Logger) {
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			logger.Warn("Failed to delete blob after row deletion",
				zap.String("storage_key", key),
				zap.Error(err),
			)
		}
	}
}

func toAttachmentValues(attachments []*domain.MediaAttachment) []domain.MediaAttachment {
	if attachments == nil {
		return nil
	}
	result := make([]domain.MediaAttachment, len(attachments))
	for i, a := range attachments {
		if a != nil {
			result[i] = *a
		}
	}
	return result
}
