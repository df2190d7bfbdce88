package services

import (
	"context"
	"testing"
	"time"

	"github.com/kaive-ai/kaive-backend/internal/repos"
	"github.com/kaive-ai/kaive-backend/internal/repos/testutil"
	"github.com/kaive-ai/kaive-backend/internal/types"
	"github.com/kaive-ai/kaive-backend/internal/voice"
)

func TestReconcileProfilesRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	profileRepo := repos.NewVoiceProfileRepo(tx, log)
	s := &voiceProfileService{
		log:      log,
		profiles: profileRepo,
	}

	creator := "reconcile-creator"
	build := func(name string) []*types.CreatorVoiceProfile {
		return []*types.CreatorVoiceProfile{
			s.buildProfile(creator, 0, name, "d", voice.ClusterMetrics{TotalEngagement: 10}),
			s.buildProfile(creator, 1, name, "d", voice.ClusterMetrics{TotalEngagement: 30}),
		}
	}

	saved, err := s.reconcileProfiles(ctx, creator, build("First Pass"))
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	if saved != 2 {
		t.Fatalf("first reconcile saved %d, want 2", saved)
	}

	first, err := profileRepo.GetByCreator(ctx, nil, creator)
	if err != nil {
		t.Fatalf("get after first reconcile: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(first))
	}

	time.Sleep(10 * time.Millisecond)

	saved, err = s.reconcileProfiles(ctx, creator, build("Second Pass"))
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if saved != 2 {
		t.Fatalf("second reconcile saved %d, want 2", saved)
	}

	second, err := profileRepo.GetByCreator(ctx, nil, creator)
	if err != nil {
		t.Fatalf("get after second reconcile: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("reconciling twice must keep one row per cluster, got %d", len(second))
	}

	for i := range second {
		if second[i].ClusterID != first[i].ClusterID {
			t.Fatalf("cluster ids changed across reconciles: %d vs %d", second[i].ClusterID, first[i].ClusterID)
		}
		if second[i].ID != first[i].ID {
			t.Fatalf("cluster %d: row identity changed, update became insert", second[i].ClusterID)
		}
		if second[i].ClusterName != "Second Pass" {
			t.Fatalf("cluster %d: name not updated: %q", second[i].ClusterID, second[i].ClusterName)
		}
		if d := second[i].CreatedAt.Sub(first[i].CreatedAt); d < -time.Millisecond || d > time.Millisecond {
			t.Fatalf("cluster %d: created_at must not move on reconcile", second[i].ClusterID)
		}
		if !second[i].UpdatedAt.After(first[i].UpdatedAt) {
			t.Fatalf("cluster %d: updated_at must advance on reconcile", second[i].ClusterID)
		}
	}
}
