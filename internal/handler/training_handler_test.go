package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack-api/internal/domain"
)

func postJSON(t *testing.T, env *handlerTestEnv, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestTrainingHandler_Create_WithAttachments(t *testing.T) {
	env := setupHandlerTest(t)

	a1 := seedAttachment(t, env, env.userID, nil, "one")
	a2 := seedAttachment(t, env, env.userID, nil, "two")

	rec := postJSON(t, env, "/trainings", TrainingRequest{
		Title:         "Leg day",
		Notes:         "felt strong",
		PerformedAt:   time.Now(),
		DurationMin:   60,
		AttachmentIDs: []uuid.UUID{a1.ID, a2.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data TrainingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Leg day", resp.Data.Title)
	assert.Len(t, resp.Data.Attachments, 2)
}

func TestTrainingHandler_Create_UnlinkableAttachmentIs400(t *testing.T) {
	env := setupHandlerTest(t)

	foreign := seedAttachment(t, env, uuid.New(), nil, "someone else's")

	rec := postJSON(t, env, "/trainings", TrainingRequest{
		Title:         "Leg day",
		PerformedAt:   time.Now(),
		AttachmentIDs: []uuid.UUID{foreign.ID},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	// The failed link rolled the training back
	var count int64
	env.db.Model(&domain.Training{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestTrainingHandler_Create_MissingTitleIs400(t *testing.T) {
	env := setupHandlerTest(t)

	rec := postJSON(t, env, "/trainings", map[string]interface{}{
		"performedAt": time.Now(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrainingHandler_Get_ForeignOwnerIsForbidden(t *testing.T) {
	env := setupHandlerTest(t)

	foreign := &domain.Training{
		BaseModel:   domain.BaseModel{ID: uuid.New()},
		OwnerID:     uuid.New(),
		Title:       "Private session",
		PerformedAt: time.Now(),
	}
	require.NoError(t, env.db.Create(foreign).Error)

	req := httptest.NewRequest(http.MethodGet, "/trainings/"+foreign.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRecordHandler_Create_WithAttachment(t *testing.T) {
	env := setupHandlerTest(t)

	id := uuid.New()
	expires := time.Now().Add(time.Hour)
	a := &domain.MediaAttachment{
		BaseModel:  domain.BaseModel{ID: id},
		OwnerID:    env.userID,
		ParentKind: domain.ParentKindPersonalRecord,
		FileName:   "pr.jpg",
		StorageKey: env.userID.String() + "/records/x/" + id.String() + "-pr.jpg",
		Category:   domain.MediaCategoryImage,
		MimeType:   "image/jpeg",
		SizeBytes:  3,
		ExpiresAt:  &expires,
	}
	require.NoError(t, env.db.Create(a).Error)

	rec := postJSON(t, env, "/records", RecordRequest{
		Exercise:      "Deadlift",
		Value:         180,
		Unit:          "kg",
		AchievedAt:    time.Now(),
		AttachmentIDs: []uuid.UUID{a.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data RecordResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Deadlift", resp.Data.Exercise)
	require.Len(t, resp.Data.Attachments, 1)
	assert.Nil(t, resp.Data.Attachments[0].ExpiresAt)
}
