package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fittrack-api/internal/domain"
)

func seedAttachment(t *testing.T, env *handlerTestEnv, owner uuid.UUID, parentID *uuid.UUID, content string) *domain.MediaAttachment {
	t.Helper()
	id := uuid.New()
	expires := time.Now().Add(time.Hour)
	a := &domain.MediaAttachment{
		BaseModel:  domain.BaseModel{ID: id},
		OwnerID:    owner,
		ParentKind: domain.ParentKindTraining,
		ParentID:   parentID,
		FileName:   "lift.jpg",
		StorageKey: owner.String() + "/trainings/x/" + id.String() + "-lift.jpg",
		Category:   domain.MediaCategoryImage,
		MimeType:   "image/jpeg",
		SizeBytes:  int64(len(content)),
	}
	if parentID == nil {
		a.ExpiresAt = &expires
	}
	require.NoError(t, env.db.Create(a).Error)
	require.NoError(t, env.store.Put(context.Background(), a.StorageKey, strings.NewReader(content)))
	return a
}

func TestAttachmentHandler_GetContent(t *testing.T) {
	env := setupHandlerTest(t)
	a := seedAttachment(t, env, env.userID, nil, "jpeg-bytes-here")

	req := httptest.NewRequest(http.MethodGet, "/attachments/"+a.ID.String()+"/content", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes-here", rec.Body.String())
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
}

func TestAttachmentHandler_GetContent_ForeignOwnerIsForbidden(t *testing.T) {
	env := setupHandlerTest(t)
	foreign := seedAttachment(t, env, uuid.New(), nil, "not yours")

	req := httptest.NewRequest(http.MethodGet, "/attachments/"+foreign.ID.String()+"/content", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "not yours")
}

func TestAttachmentHandler_GetContent_Missing(t *testing.T) {
	env := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/attachments/"+uuid.NewString()+"/content", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttachmentHandler_Delete(t *testing.T) {
	env := setupHandlerTest(t)
	a := seedAttachment(t, env, env.userID, nil, "bytes")

	req := httptest.NewRequest(http.MethodDelete, "/attachments/"+a.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var gone domain.MediaAttachment
	err := env.db.First(&gone, "id = ?", a.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.False(t, env.store.Has(a.StorageKey))
}

func TestAttachmentHandler_Delete_BlobFailureStillSucceeds(t *testing.T) {
	env := setupHandlerTest(t)
	a := seedAttachment(t, env, env.userID, nil, "bytes")

	env.store.DeleteFunc = func(ctx context.Context, key string) error {
		return assert.AnError
	}

	req := httptest.NewRequest(http.MethodDelete, "/attachments/"+a.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	// Metadata removal is authoritative; a failed blob delete is not an error
	require.Equal(t, http.StatusOK, rec.Code)

	var gone domain.MediaAttachment
	err := env.db.First(&gone, "id = ?", a.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAttachmentHandler_Delete_ForeignOwnerIsForbidden(t *testing.T) {
	env := setupHandlerTest(t)
	foreign := seedAttachment(t, env, uuid.New(), nil, "bytes")

	req := httptest.NewRequest(http.MethodDelete, "/attachments/"+foreign.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var still domain.MediaAttachment
	assert.NoError(t, env.db.First(&still, "id = ?", foreign.ID).Error)
}

func TestAttachmentHandler_ListTrainingAttachments(t *testing.T) {
	env := setupHandlerTest(t)

	training := &domain.Training{
		BaseModel:   domain.BaseModel{ID: uuid.New()},
		OwnerID:     env.userID,
		Title:       "Bench",
		PerformedAt: time.Now(),
	}
	require.NoError(t, env.db.Create(training).Error)
	seedAttachment(t, env, env.userID, &training.ID, "one")
	seedAttachment(t, env, env.userID, &training.ID, "two")

	req := httptest.NewRequest(http.MethodGet, "/trainings/"+training.ID.String()+"/attachments", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []AttachmentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	for _, a := range resp.Data {
		assert.NotEmpty(t, a.FileURL)
		require.NotNil(t, a.ParentID)
		assert.Equal(t, training.ID, *a.ParentID)
	}
}
