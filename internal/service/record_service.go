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

// CreateRecordInput carries a personal record create/update request.
type CreateRecordInput struct {
	Exercise      string
	Value         float64
	Unit          string
	AchievedAt    time.Time
	AttachmentIDs []uuid.UUID
}

// RecordService implements personal record CRUD with the same transactional
// attachment linking as TrainingService.
type RecordService struct {
	db             *gorm.DB
	recordRepo     repository.RecordRepository
	attachmentRepo repository.AttachmentRepository
	store          storage.Storage
	logger         *zap.Logger
}

// NewRecordService creates a new RecordService
func NewRecordService(
	db *gorm.DB,
	recordRepo repository.RecordRepository,
	attachmentRepo repository.AttachmentRepository,
	store storage.Storage,
	logger *zap.Logger,
) *RecordService {
	return &RecordService{
		db:             db,
		recordRepo:     recordRepo,
		attachmentRepo: attachmentRepo,
		store:          store,
		logger:         logger,
	}
}

// Create inserts a personal record and links the given unlinked attachments
// to it atomically.
func (s *RecordService) Create(ctx context.Context, input CreateRecordInput, ownerID uuid.UUID) (*domain.PersonalRecord, error) {
	record := &domain.PersonalRecord{
		BaseModel:  domain.BaseModel{ID: uuid.New()},
		OwnerID:    ownerID,
		Exercise:   input.Exercise,
		Value:      input.Value,
		Unit:       input.Unit,
		AchievedAt: input.AchievedAt,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.recordRepo.CreateTx(tx, record); err != nil {
			return fmt.Errorf("failed to create personal record: %w", err)
		}
		if err := s.attachmentRepo.LinkTx(tx, input.AttachmentIDs, domain.ParentKindPersonalRecord, record.ID, ownerID); err != nil {
			return fmt.Errorf("%w: %v", ErrAttachmentLink, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, record.ID, ownerID)
}

// Update modifies a record owned by ownerID and links any additional
// attachments in the same transaction.
func (s *RecordService) Update(ctx context.Context, id uuid.UUID, input CreateRecordInput, ownerID uuid.UUID) (*domain.PersonalRecord, error) {
	record, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up personal record: %w", err)
	}
	if record.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	record.Exercise = input.Exercise
	record.Value = input.Value
	record.Unit = input.Unit
	record.AchievedAt = input.AchievedAt

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.recordRepo.UpdateTx(tx, record); err != nil {
			return fmt.Errorf("failed to update personal record: %w", err)
		}
		if err := s.attachmentRepo.LinkTx(tx, input.AttachmentIDs, domain.ParentKindPersonalRecord, record.ID, ownerID); err != nil {
			return fmt.Errorf("%w: %v", ErrAttachmentLink, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, record.ID, ownerID)
}

// Get returns a record owned by ownerID with its attachments loaded.
func (s *RecordService) Get(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*domain.PersonalRecord, error) {
	record, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up personal record: %w", err)
	}
	if record.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	attachments, err := s.attachmentRepo.FindByParent(ctx, domain.ParentKindPersonalRecord, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attachments: %w", err)
	}
	record.Attachments = toAttachmentValues(attachments)
	return record, nil
}

// List returns all personal records owned by ownerID.
func (s *RecordService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.PersonalRecord, error) {
	return s.recordRepo.FindByOwner(ctx, ownerID)
}

// Delete removes a record and cascades over its attachment rows in one
// transaction, then deletes the blobs best-effort after the commit.
func (s *RecordService) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	record, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up personal record: %w", err)
	}
	if record.OwnerID != ownerID {
		return ErrForbidden
	}

	var blobKeys []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keys, err := s.attachmentRepo.DeleteByParentTx(tx, domain.ParentKindPersonalRecord, id)
		if err != nil {
			return fmt.Errorf("failed to delete attachments: %w", err)
		}
		blobKeys = keys
		return s.recordRepo.DeleteTx(tx, id)
	})
	if err != nil {
		return err
	}

	deleteBlobs(ctx, s.store, blobKeys, s.logger)
	return nil
}
