package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fittrack-api/internal/domain"
)

// AttachmentRepository defines the data access contract for the media
// attachment ledger. Ledger rows are authoritative; blob deletion is the
// caller's concern and happens after the row is gone.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.MediaAttachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.MediaAttachment, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.MediaAttachment, error)
	FindByParent(ctx context.Context, kind domain.ParentKind, parentID uuid.UUID) ([]*domain.MediaAttachment, error)
	CountByParentAndCategory(ctx context.Context, kind domain.ParentKind, parentID uuid.UUID, category domain.MediaCategory) (int64, error)
	SumSizeByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBatch(ctx context.Context, ids []uuid.UUID) error
	FindExpiredUnlinked(ctx context.Context) ([]*domain.MediaAttachment, error)

	// LinkTx binds unlinked attachments to a parent inside the caller's
	// transaction. It fails unless every id was an unlinked attachment of
	// the right kind owned by ownerID, so the caller's transaction rolls
	// back and the parent write never commits half-linked.
	LinkTx(tx *gorm.DB, ids []uuid.UUID, kind domain.ParentKind, parentID uuid.UUID, ownerID uuid.UUID) error

	// DeleteByParentTx removes every row referencing the parent inside the
	// caller's transaction and returns the blob keys for post-commit cleanup.
	DeleteByParentTx(tx *gorm.DB, kind domain.ParentKind, parentID uuid.UUID) ([]string, error)
}

type attachmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new instance of AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepositoryImpl{db: db}
}

// Create inserts a new ledger row
func (r *attachmentRepositoryImpl) Create(ctx context.Context, attachment *domain.MediaAttachment) error {
	if err := r.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds an attachment by its ID
func (r *attachmentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.MediaAttachment, error) {
	var attachment domain.MediaAttachment
	if err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// FindByIDs finds attachments by their IDs
func (r *attachmentRepositoryImpl) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.MediaAttachment, error) {
	if len(ids) == 0 {
		return []*domain.MediaAttachment{}, nil
	}
	var attachments []*domain.MediaAttachment
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// FindByParent finds all attachments linked to the given parent entity
func (r *attachmentRepositoryImpl) FindByParent(ctx context.Context, kind domain.ParentKind, parentID uuid.UUID) ([]*domain.MediaAttachment, error) {
	var attachments []*domain.MediaAttachment
	if err := r.db.WithContext(ctx).
		Where("parent_kind = ? AND parent_id = ?", kind, parentID).
		Order("created_at DESC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// CountByParentAndCategory counts attachments of one verified category
// linked to the given parent
func (r *attachmentRepositoryImpl) CountByParentAndCategory(ctx context.Context, kind domain.ParentKind, parentID uuid.UUID, category domain.MediaCategory) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.MediaAttachment{}).
		Where("parent_kind = ? AND parent_id = ? AND category = ?", kind, parentID, category).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumSizeByOwner computes the owner's aggregate stored bytes from live rows.
// A live SUM avoids the drift a cached counter would accumulate.
func (r *attachmentRepositoryImpl) SumSizeByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.MediaAttachment{}).
		Where("owner_id = ?", ownerID).
		Select("COALESCE(SUM(size_bytes), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Delete removes a single ledger row
func (r *attachmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&domain.MediaAttachment{}, "id = ?", id).Error; err != nil {
		return err
	}
	return nil
}

// DeleteBatch removes multiple ledger rows by their IDs
func (r *attachmentRepositoryImpl) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.MediaAttachment{}).Error; err != nil {
		return err
	}
	return nil
}

// FindExpiredUnlinked finds unlinked attachments whose grace period has passed
func (r *attachmentRepositoryImpl) FindExpiredUnlinked(ctx context.Context) ([]*domain.MediaAttachment, error) {
	var attachments []*domain.MediaAttachment
	if err := r.db.WithContext(ctx).
		Where("parent_id IS NULL AND expires_at < ?", time.Now()).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepositoryImpl) LinkTx(tx *gorm.DB, ids []uuid.UUID, kind domain.ParentKind, parentID uuid.UUID, ownerID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	result := tx.
		Model(&domain.MediaAttachment{}).
		Where("id IN ? AND parent_id IS NULL AND parent_kind = ? AND owner_id = ?", ids, kind, ownerID).
		Updates(map[string]interface{}{
			"parent_id":  parentID,
			"expires_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected != int64(len(ids)) {
		return fmt.Errorf("expected to link %d attachment(s) but linked %d: some are missing, already linked, of another kind, or not owned by the caller",
			len(ids), result.RowsAffected)
	}
	return nil
}

func (r *attachmentRepositoryImpl) DeleteByParentTx(tx *gorm.DB, kind domain.ParentKind, parentID uuid.UUID) ([]string, error) {
	var attachments []*domain.MediaAttachment
	if err := tx.
		Where("parent_kind = ? AND parent_id = ?", kind, parentID).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	if len(attachments) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(attachments))
	ids := make([]uuid.UUID, 0, len(attachments))
	for _, a := range attachments {
		keys = append(keys, a.StorageKey)
		ids = append(ids, a.ID)
	}

	if err := tx.
		Where("id IN ?", ids).
		Delete(&domain.MediaAttachment{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
