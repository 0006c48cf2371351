package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fittrack-api/internal/domain"
	"fittrack-api/internal/repository"
	"fittrack-api/internal/sniff"
	"fittrack-api/internal/storage"
)

// Limits holds the upload validation limits.
type Limits struct {
	MaxFileSize        int64
	MaxImagesPerParent int64
	MaxVideosPerParent int64
}

// UnlinkedTTL is the grace period an attachment may stay unlinked before the
// cleanup job reclaims it. The UI uploads media before submitting the form
// that creates the parent entity, so a window is required.
const UnlinkedTTL = 1 * time.Hour

// UploadInput carries one upload request into the validator.
type UploadInput struct {
	Data         []byte
	FileName     string
	DeclaredMime string
	DeclaredSize int64
	EntityType   string
	ParentID     *uuid.UUID
	OwnerID      uuid.UUID
}

// UploadService validates an incoming file against signature, size, count
// and quota rules, persists the blob, and records the ledger row. All
// validation happens before any byte is written; a rejection has no side
// effects.
type UploadService struct {
	attachmentRepo repository.AttachmentRepository
	trainingRepo   repository.TrainingRepository
	recordRepo     repository.RecordRepository
	store          storage.Storage
	quota          *QuotaAccountant
	limits         Limits
	logger         *zap.Logger
}

// NewUploadService creates a new UploadService
func NewUploadService(
	attachmentRepo repository.AttachmentRepository,
	trainingRepo repository.TrainingRepository,
	recordRepo repository.RecordRepository,
	store storage.Storage,
	quota *QuotaAccountant,
	limits Limits,
	logger *zap.Logger,
) *UploadService {
	return &UploadService{
		attachmentRepo: attachmentRepo,
		trainingRepo:   trainingRepo,
		recordRepo:     recordRepo,
		store:          store,
		quota:          quota,
		limits:         limits,
		logger:         logger,
	}
}

// Upload runs the validation pipeline in order, short-circuiting on the
// first failure, then persists the blob and inserts the ledger row. The row
// is created unlinked (with an expiry) when no parent id is supplied.
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (*domain.MediaAttachment, error) {
	if len(input.Data) == 0 {
		return nil, newUploadError(ErrKindMissingFile, "no file provided")
	}

	kind, err := domain.ParseParentKind(input.EntityType)
	if err != nil {
		return nil, newUploadError(ErrKindUnknownEntityType, err.Error())
	}

	detected, ok := sniff.Detect(input.Data)
	if !ok {
		return nil, newUploadError(ErrKindUnrecognizedSignature, "file format not recognized")
	}

	if !sniff.MatchesDeclared(detected, input.DeclaredMime) {
		return nil, newUploadError(ErrKindSignatureMismatch,
			fmt.Sprintf("declared type %q does not match detected type %q", input.DeclaredMime, detected.MimeType))
	}

	size := int64(len(input.Data))
	if size > s.limits.MaxFileSize || input.DeclaredSize > s.limits.MaxFileSize {
		return nil, newUploadError(ErrKindFileTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.limits.MaxFileSize))
	}

	if input.ParentID != nil {
		if err := s.checkParentOwnership(ctx, kind, *input.ParentID, input.OwnerID); err != nil {
			return nil, err
		}
		if err := s.checkCategoryCap(ctx, kind, *input.ParentID, detected.Category); err != nil {
			return nil, err
		}
	}

	exceeds, err := s.quota.WouldExceed(ctx, input.OwnerID, size)
	if err != nil {
		return nil, fmt.Errorf("failed to compute storage usage: %w", err)
	}
	if exceeds {
		return nil, newUploadError(ErrKindUserQuotaExceeded, "user storage quota exceeded")
	}

	key := storage.BuildKey(input.OwnerID, kind, input.ParentID, input.FileName)
	if err := s.store.Put(ctx, key, bytes.NewReader(input.Data)); err != nil {
		return nil, wrapUploadError(ErrKindStorageWriteFailed, "failed to store file", err)
	}

	attachment := &domain.MediaAttachment{
		BaseModel:  domain.BaseModel{ID: uuid.New()},
		OwnerID:    input.OwnerID,
		ParentKind: kind,
		ParentID:   input.ParentID,
		FileName:   input.FileName,
		StorageKey: key,
		Category:   detected.Category,
		MimeType:   detected.MimeType,
		SizeBytes:  size,
	}
	if input.ParentID == nil {
		expiresAt := time.Now().Add(UnlinkedTTL)
		attachment.ExpiresAt = &expiresAt
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		// Roll the blob back so a failed insert leaves no orphan; a leftover
		// blob is tolerable, a ledger row without one is not.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove blob after ledger insert failure",
				zap.String("storage_key", key),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to create attachment record: %w", err)
	}

	s.logger.Info("Accepted upload",
		zap.String("attachment_id", attachment.ID.String()),
		zap.String("owner_id", input.OwnerID.String()),
		zap.String("mime_type", detected.MimeType),
		zap.Int64("size_bytes", size),
		zap.Bool("linked", input.ParentID != nil),
	)
	return attachment, nil
}

// FileURL derives the retrieval URL for an attachment.
func (s *UploadService) FileURL(attachment *domain.MediaAttachment) string {
	return s.store.URL(attachment.StorageKey)
}

func (s *UploadService) checkParentOwnership(ctx context.Context, kind domain.ParentKind, parentID, ownerID uuid.UUID) error {
	var parentOwner uuid.UUID
	switch kind {
	case domain.ParentKindTraining:
		training, err := s.trainingRepo.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newUploadError(ErrKindParentNotFound, "training not found")
			}
			return fmt.Errorf("failed to look up training: %w", err)
		}
		parentOwner = training.OwnerID
	case domain.ParentKindPersonalRecord:
		record, err := s.recordRepo.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newUploadError(ErrKindParentNotFound, "personal record not found")
			}
			return fmt.Errorf("failed to look up personal record: %w", err)
		}
		parentOwner = record.OwnerID
	}
	if parentOwner != ownerID {
		// Not-owned is reported the same as not-found to avoid confirming
		// the entity exists
		return newUploadError(ErrKindParentNotFound, "parent entity not found")
	}
	return nil
}

func (s *UploadService) checkCategoryCap(ctx context.Context, kind domain.ParentKind, parentID uuid.UUID, category domain.MediaCategory) error {
	count, err := s.attachmentRepo.CountByParentAndCategory(ctx, kind, parentID, category)
	if err != nil {
		return fmt.Errorf("failed to count attachments: %w", err)
	}

	var limit int64
	var what string
	switch category {
	case domain.MediaCategoryImage:
		limit, what = s.limits.MaxImagesPerParent, "images"
	case domain.MediaCategoryVideo:
		limit, what = s.limits.MaxVideosPerParent, "videos"
	}
	if count >= limit {
		return &UploadError{
			Kind:     ErrKindPerTypeCountExceeded,
			Category: category,
			Message:  fmt.Sprintf("parent already has the maximum of %d %s", limit, what),
		}
	}
	return nil
}
