package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kaive-ai/kaive-backend/internal/repos"
	"github.com/kaive-ai/kaive-backend/internal/repos/testutil"
	"github.com/kaive-ai/kaive-backend/internal/types"
)

func seedUpload(t *testing.T, ctx context.Context, uploads repos.UploadedFileRepo) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	record := &types.UploadedFile{
		ID:        uuid.New(),
		Filename:  "posts.json",
		Status:    types.UploadStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := uploads.Create(ctx, nil, []*types.UploadedFile{record}); err != nil {
		t.Fatalf("seed upload: %v", err)
	}
	return record.ID
}

func TestFinalizeUploadSurvivesCancelledContext(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	uploads := repos.NewUploadedFileRepo(tx, log)
	s := &uploadPipelineService{
		log:     log,
		uploads: uploads,
	}

	completedID := seedUpload(t, ctx, uploads)
	failedID := seedUpload(t, ctx, uploads)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	s.finalizeUpload(cancelled, completedID, 3, nil)
	s.finalizeUpload(cancelled, failedID, 1, errors.New("label generation timed out"))

	rows, err := uploads.GetByIDs(ctx, nil, []uuid.UUID{completedID, failedID})
	if err != nil {
		t.Fatalf("fetch uploads: %v", err)
	}
	byID := map[uuid.UUID]*types.UploadedFile{}
	for _, r := range rows {
		byID[r.ID] = r
	}

	completed := byID[completedID]
	if completed == nil || completed.Status != types.UploadStatusCompleted {
		t.Fatalf("expected completed status despite cancelled context, got %+v", completed)
	}
	if completed.VoiceProfilesCount != 3 {
		t.Fatalf("expected 3 voice profiles recorded, got %d", completed.VoiceProfilesCount)
	}

	failed := byID[failedID]
	if failed == nil || failed.Status != types.UploadStatusVoiceProfileFailed {
		t.Fatalf("expected voice_profile_failed status despite cancelled context, got %+v", failed)
	}
	if failed.ErrorMessage == "" {
		t.Fatalf("expected error message on failed upload")
	}
}
