package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fittrack-api/internal/domain"
)

// TrainingRepository defines the data access contract for training sessions
type TrainingRepository interface {
	CreateTx(tx *gorm.DB, training *domain.Training) error
	UpdateTx(tx *gorm.DB, training *domain.Training) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Training, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Training, error)
}

type trainingRepositoryImpl struct {
	db *gorm.DB
}

// NewTrainingRepository creates a new instance of TrainingRepository
func NewTrainingRepository(db *gorm.DB) TrainingRepository {
	return &trainingRepositoryImpl{db: db}
}

// CreateTx inserts a training row inside the caller's transaction
func (r *trainingRepositoryImpl) CreateTx(tx *gorm.DB, training *domain.Training) error {
	return tx.Create(training).Error
}

// UpdateTx saves a training row inside the caller's transaction
func (r *trainingRepositoryImpl) UpdateTx(tx *gorm.DB, training *domain.Training) error {
	result := tx.Save(training)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTx removes a training row inside the caller's transaction
func (r *trainingRepositoryImpl) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	result := tx.Delete(&domain.Training{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a training by its ID
func (r *trainingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Training, error) {
	var training domain.Training
	if err := r.db.WithContext(ctx).First(&training, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &training, nil
}

// FindByOwner lists a user's trainings, newest first
func (r *trainingRepositoryImpl) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Training, error) {
	var trainings []*domain.Training
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("performed_at DESC").
		Find(&trainings).Error; err != nil {
		return nil, err
	}
	return trainings, nil
}
