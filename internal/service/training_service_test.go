package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fittrack-api/internal/domain"
	"fittrack-api/internal/repository"
	"fittrack-api/internal/storage"
)

// setupServiceTestDB opens an in-memory SQLite database with all tables the
// services touch, so transaction rollback behaves like production.
func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "failed to open database")

	db.Exec(`CREATE TABLE media_attachments (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		deleted_at DATETIME,
		owner_id TEXT NOT NULL,
		parent_kind TEXT NOT NULL,
		parent_id TEXT,
		file_name TEXT NOT NULL,
		storage_key TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		expires_at DATETIME
	)`)
	db.Exec(`CREATE TABLE trainings (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		deleted_at DATETIME,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		notes TEXT,
		performed_at DATETIME NOT NULL,
		duration_min INTEGER NOT NULL DEFAULT 0
	)`)
	db.Exec(`CREATE TABLE personal_records (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		deleted_at DATETIME,
		owner_id TEXT NOT NULL,
		exercise TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL,
		achieved_at DATETIME NOT NULL
	)`)

	return db
}

func seedUnlinkedAttachment(t *testing.T, db *gorm.DB, owner uuid.UUID, kind domain.ParentKind) *domain.MediaAttachment {
	t.Helper()
	id := uuid.New()
	expires := time.Now().Add(time.Hour)
	a := &domain.MediaAttachment{
		BaseModel:  domain.BaseModel{ID: id},
		OwnerID:    owner,
		ParentKind: kind,
		FileName:   "clip.mp4",
		StorageKey: owner.String() + "/" + id.String() + "-clip.mp4",
		Category:   domain.MediaCategoryVideo,
		MimeType:   "video/mp4",
		SizeBytes:  2048,
		ExpiresAt:  &expires,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func newTestTrainingService(db *gorm.DB, store storage.Storage) *TrainingService {
	return NewTrainingService(
		db,
		repository.NewTrainingRepository(db),
		repository.NewAttachmentRepository(db),
		store,
		zap.NewNop(),
	)
}

func TestTrainingService_Create_LinksAttachments(t *testing.T) {
	db := setupServiceTestDB(t)
	store := storage.NewMockStorage()
	svc := newTestTrainingService(db, store)
	ctx := context.Background()

	owner := uuid.New()
	a1 := seedUnlinkedAttachment(t, db, owner, domain.ParentKindTraining)
	a2 := seedUnlinkedAttachment(t, db, owner, domain.ParentKindTraining)

	training, err := svc.Create(ctx, CreateTrainingInput{
		Title:         "Leg day",
		Notes:         "PR attempt",
		PerformedAt:   time.Now(),
		DurationMin:   75,
		AttachmentIDs: []uuid.UUID{a1.ID, a2.ID},
	}, owner)
	require.NoError(t, err)

	assert.Equal(t, "Leg day", training.Title)
	require.Len(t, training.Attachments, 2)
	for _, a := range training.Attachments {
		require.NotNil(t, a.ParentID)
		assert.Equal(t, training.ID, *a.ParentID)
		assert.Nil(t, a.ExpiresAt)
	}
}

func TestTrainingService_Create_LinkFailureRollsBackTraining(t *testing.T) {
	db := setupServiceTestDB(t)
	store := storage.NewMockStorage()
	svc := newTestTrainingService(db, store)
	ctx := context.Background()

	owner := uuid.New()
	mine := seedUnlinkedAttachment(t, db, owner, domain.ParentKindTraining)
	missing := uuid.New()

	_, err := svc.Create(ctx, CreateTrainingInput{
		Title:         "Leg day",
		PerformedAt:   time.Now(),
		AttachmentIDs: []uuid.UUID{mine.ID, missing},
	}, owner)
	require.ErrorIs(t, err, ErrAttachmentLink)

	// The training row must not survive the failed link
	var count int64
	db.Model(&domain.Training{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// The valid attachment stays unlinked and keeps its expiry
	var a domain.MediaAttachment
	require.NoError(t, db.First(&a, "id = ?", mine.ID).Error)
	assert.Nil(t, a.ParentID)
	assert.NotNil(t, a.ExpiresAt)
}

func TestTrainingService_Get_ChecksOwnership(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestTrainingService(db, storage.NewMockStorage())
	ctx := context.Background()

	owner := uuid.New()
	stranger := uuid.New()

	training, err := svc.Create(ctx, CreateTrainingInput{
		Title:       "Bench",
		PerformedAt: time.Now(),
	}, owner)
	require.NoError(t, err)

	_, err = svc.Get(ctx, training.ID, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, uuid.New(), owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrainingService_Delete_CascadesAttachmentsAndBlobs(t *testing.T) {
	db := setupServiceTestDB(t)
	store := storage.NewMockStorage()
	svc := newTestTrainingService(db, store)
	ctx := context.Background()

	owner := uuid.New()
	a1 := seedUnlinkedAttachment(t, db, owner, domain.ParentKindTraining)
	a2 := seedUnlinkedAttachment(t, db, owner, domain.ParentKindTraining)
	require.NoError(t, store.Put(ctx, a1.StorageKey, strings.NewReader("v1")))
	require.NoError(t, store.Put(ctx, a2.StorageKey, strings.NewReader("v2")))

	training, err := svc.Create(ctx, CreateTrainingInput{
		Title:         "Squats",
		PerformedAt:   time.Now(),
		AttachmentIDs: []uuid.UUID{a1.ID, a2.ID},
	}, owner)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, training.ID, owner))

	var count int64
	db.Model(&domain.Training{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&domain.MediaAttachment{}).Count(&count)
	assert.Equal(t, int64(0), count)

	assert.ElementsMatch(t, []string{a1.StorageKey, a2.StorageKey}, store.DeleteCalls)
}

func TestTrainingService_Delete_BlobFailureDoesNotFailDelete(t *testing.T) {
	db := setupServiceTestDB(t)
	store := storage.NewMockStorage()
	store.DeleteFunc = func(ctx context.Context, key string) error {
		return assert.AnError
	}
	svc := newTestTrainingService(db, store)
	ctx := context.Background()

	owner := uuid.New()
	a := seedUnlinkedAttachment(t, db, owner, domain.ParentKindTraining)

	training, err := svc.Create(ctx, CreateTrainingInput{
		Title:         "Deadlifts",
		PerformedAt:   time.Now(),
		AttachmentIDs: []uuid.UUID{a.ID},
	}, owner)
	require.NoError(t, err)

	// Row deletion succeeds even though every blob delete fails
	require.NoError(t, svc.Delete(ctx, training.ID, owner))

	var count int64
	db.Model(&domain.MediaAttachment{}).Count(&count)
	assert.Equal(t, int64(0), count, "ledger rows are gone regardless of blob outcome")
}

func TestRecordService_Create_LinkFailureRollsBackRecord(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewRecordService(
		db,
		repository.NewRecordRepository(db),
		repository.NewAttachmentRepository(db),
		storage.NewMockStorage(),
		zap.NewNop(),
	)
	ctx := context.Background()

	owner := uuid.New()
	// Attachment of the wrong kind must not link to a personal record
	wrongKind := seedUnlinkedAttachment(t, db, owner, domain.ParentKindTraining)

	_, err := svc.Create(ctx, CreateRecordInput{
		Exercise:      "Deadlift",
		Value:         180,
		Unit:          "kg",
		AchievedAt:    time.Now(),
		AttachmentIDs: []uuid.UUID{wrongKind.ID},
	}, owner)
	require.ErrorIs(t, err, ErrAttachmentLink)

	var count int64
	db.Model(&domain.PersonalRecord{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
