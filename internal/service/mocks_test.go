package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fittrack-api/internal/domain"
)

// MockAttachmentRepository is a func-field mock of AttachmentRepository.
// Unset funcs return zero values.
type MockAttachmentRepository struct {
	CreateFunc                   func(ctx context.Context, attachment *domain.MediaAttachment) error
	FindByIDFunc                 func(ctx context.Context, id uuid.UUID) (*domain.MediaAttachment, error)
	FindByIDsFunc                func(ctx context.Context, ids []uuid.UUID) ([]*domain.MediaAttachment, error)
	FindByParentFunc             func(ctx context.Context, kind domain.ParentKind, parentID uuid.UUID) ([]*domain.MediaAttachment, error)
	CountByParentAndCategoryFunc func(ctx context.Context, kind domain.ParentKind, parentID uuid.UUID, category domain.MediaCategory) (int64, error)
	SumSizeByOwnerFunc           func(ctx context.Context, ownerID uuid.UUID) (int64, error)
	DeleteFunc                   func(ctx context.Context, id uuid.UUID) error
	DeleteBatchFunc              func(ctx context.Context, ids []uuid.UUID) error
	FindExpiredUnlinkedFunc      func(ctx context.Context) ([]*domain.MediaAttachment, error)
	LinkTxFunc                   func(tx *gorm.DB, ids []uuid.UUID, kind domain.ParentKind, parentID uuid.UUID, ownerID uuid.UUID) error
	DeleteByParentTxFunc         func(tx *gorm.DB, kind domain.ParentKind, parentID uuid.UUID) ([]string, error)

	Created []*domain.MediaAttachment
}

func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *domain.MediaAttachment) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, attachment); err != nil {
			return err
		}
	}
	m.Created = append(m.Created, attachment)
	return nil
}

func (m *MockAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.MediaAttachment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockAttachmentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.MediaAttachment, error) {
	if m.FindByIDsFunc != nil {
		return m.FindByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) FindByParent(ctx context.Context, kind domain.ParentKind, parentID uuid.UUID) ([]*domain.MediaAttachment, error) {
	if m.FindByParentFunc != nil {
		return m.FindByParentFunc(ctx, kind, parentID)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) CountByParentAndCategory(ctx context.Context, kind domain.ParentKind, parentID uuid.UUID, category domain.MediaCategory) (int64, error) {
	if m.CountByParentAndCategoryFunc != nil {
		return m.CountByParentAndCategoryFunc(ctx, kind, parentID, category)
	}
	return 0, nil
}

func (m *MockAttachmentRepository) SumSizeByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if m.SumSizeByOwnerFunc != nil {
		return m.SumSizeByOwnerFunc(ctx, ownerID)
	}
	return 0, nil
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockAttachmentRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if m.DeleteBatchFunc != nil {
		return m.DeleteBatchFunc(ctx, ids)
	}
	return nil
}

func (m *MockAttachmentRepository) FindExpiredUnlinked(ctx context.Context) ([]*domain.MediaAttachment, error) {
	if m.FindExpiredUnlinkedFunc != nil {
		return m.FindExpiredUnlinkedFunc(ctx)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) LinkTx(tx *gorm.DB, ids []uuid.UUID, kind domain.ParentKind, parentID uuid.UUID, ownerID uuid.UUID) error {
	if m.LinkTxFunc != nil {
		return m.LinkTxFunc(tx, ids, kind, parentID, ownerID)
	}
	return nil
}

func (m *MockAttachmentRepository) DeleteByParentTx(tx *gorm.DB, kind domain.ParentKind, parentID uuid.UUID) ([]string, error) {
	if m.DeleteByParentTxFunc != nil {
		return m.DeleteByParentTxFunc(tx, kind, parentID)
	}
	return nil, nil
}

// MockTrainingRepository is a func-field mock of TrainingRepository.
type MockTrainingRepository struct {
	CreateTxFunc    func(tx *gorm.DB, training *domain.Training) error
	UpdateTxFunc    func(tx *gorm.DB, training *domain.Training) error
	DeleteTxFunc    func(tx *gorm.DB, id uuid.UUID) error
	FindByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.Training, error)
	FindByOwnerFunc func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Training, error)
}

func (m *MockTrainingRepository) CreateTx(tx *gorm.DB, training *domain.Training) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(tx, training)
	}
	return nil
}

func (m *MockTrainingRepository) UpdateTx(tx *gorm.DB, training *domain.Training) error {
	if m.UpdateTxFunc != nil {
		return m.UpdateTxFunc(tx, training)
	}
	return nil
}

func (m *MockTrainingRepository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if m.DeleteTxFunc != nil {
		return m.DeleteTxFunc(tx, id)
	}
	return nil
}

func (m *MockTrainingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Training, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockTrainingRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Training, error) {
	if m.FindByOwnerFunc != nil {
		return m.FindByOwnerFunc(ctx, ownerID)
	}
	return nil, nil
}

// MockRecordRepository is a func-field mock of RecordRepository.
type MockRecordRepository struct {
	CreateTxFunc    func(tx *gorm.DB, record *domain.PersonalRecord) error
	UpdateTxFunc    func(tx *gorm.DB, record *domain.PersonalRecord) error
	DeleteTxFunc    func(tx *gorm.DB, id uuid.UUID) error
	FindByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.PersonalRecord, error)
	FindByOwnerFunc func(ctx context.Context, ownerID uuid.UUID) ([]*domain.PersonalRecord, error)
}

func (m *MockRecordRepository) CreateTx(tx *gorm.DB, record *domain.PersonalRecord) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(tx, record)
	}
	return nil
}

func (m *MockRecordRepository) UpdateTx(tx *gorm.DB, record *domain.PersonalRecord) error {
	if m.UpdateTxFunc != nil {
		return m.UpdateTxFunc(tx, record)
	}
	return nil
}

func (m *MockRecordRepository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if m.DeleteTxFunc != nil {
		return m.DeleteTxFunc(tx, id)
	}
	return nil
}

func (m *MockRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PersonalRecord, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockRecordRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.PersonalRecord, error) {
	if m.FindByOwnerFunc != nil {
		return m.FindByOwnerFunc(ctx, ownerID)
	}
	return nil, nil
}
