package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fittrack-api/internal/domain"
)

// RecordRepository defines the data access contract for personal records
type RecordRepository interface {
	CreateTx(tx *gorm.DB, record *domain.PersonalRecord) error
	UpdateTx(tx *gorm.DB, record *domain.PersonalRecord) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.PersonalRecord, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.PersonalRecord, error)
}

type recordRepositoryImpl struct {
	db *gorm.DB
}

// NewRecordRepository creates a new instance of RecordRepository
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepositoryImpl{db: db}
}

// CreateTx inserts a record row inside the caller's transaction
func (r *recordRepositoryImpl) CreateTx(tx *gorm.DB, record *domain.PersonalRecord) error {
	return tx.Create(record).Error
}

// UpdateTx saves a record row inside the caller's transaction
func (r *recordRepositoryImpl) UpdateTx(tx *gorm.DB, record *domain.PersonalRecord) error {
	result := tx.Save(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTx removes a record row inside the caller's transaction
func (r *recordRepositoryImpl) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	result := tx.Delete(&domain.PersonalRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a personal record by its ID
func (r *recordRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.PersonalRecord, error) {
	var record domain.PersonalRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByOwner lists a user's personal records, newest first
func (r *recordRepositoryImpl) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.PersonalRecord, error) {
	var records []*domain.PersonalRecord
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("achieved_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
