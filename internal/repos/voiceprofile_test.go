package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/kaive-ai/kaive-backend/internal/repos"
	"github.com/kaive-ai/kaive-backend/internal/repos/testutil"
	"github.com/kaive-ai/kaive-backend/internal/types"
)

func TestVoiceProfileCreateAndExistence(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := repos.NewVoiceProfileRepo(db, log)

	testutil.SeedProfile(t, ctx, tx, "creator-a", 0, 100)
	testutil.SeedProfile(t, ctx, tx, "creator-a", 2, 50)

	existing, err := repo.ExistingClusterIDs(ctx, tx, "creator-a", []int{0, 1, 2, 3})
	if err != nil {
		t.Fatalf("existing cluster ids: %v", err)
	}
	if !existing[0] || !existing[2] {
		t.Fatalf("expected clusters 0 and 2 to exist, got %v", existing)
	}
	if existing[1] || existing[3] {
		t.Fatalf("expected clusters 1 and 3 to be absent, got %v", existing)
	}
}

func TestVoiceProfileUpdatePreservesCreatedAt(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := repos.NewVoiceProfileRepo(db, log)

	seeded := testutil.SeedProfile(t, ctx, tx, "creator-b", 1, 10)
	time.Sleep(10 * time.Millisecond)

	update := &types.CreatorVoiceProfile{
		Creator:             "creator-b",
		ClusterID:           1,
		ClusterName:         "Updated Name",
		ClusterDescription:  "Updated description.",
		VoiceSchema:         seeded.VoiceSchema,
		Engagement:          seeded.Engagement,
		PostCharacteristics: seeded.PostCharacteristics,
		TopPostIDs:          seeded.TopPostIDs,
		TotalEngagement:     42,
	}
	if err := repo.UpdateByCreatorCluster(ctx, tx, update); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByCreator(ctx, tx, "creator-b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(got))
	}
	if got[0].ClusterName != "Updated Name" {
		t.Fatalf("cluster name not updated: %q", got[0].ClusterName)
	}
	if got[0].TotalEngagement != 42 {
		t.Fatalf("total engagement not updated: %v", got[0].TotalEngagement)
	}
	if d := got[0].CreatedAt.Sub(seeded.CreatedAt); d < -time.Millisecond || d > time.Millisecond {
		t.Fatalf("created_at must not move on update: %v vs %v", got[0].CreatedAt, seeded.CreatedAt)
	}
	if !got[0].UpdatedAt.After(seeded.UpdatedAt) {
		t.Fatalf("updated_at must advance on update")
	}
}

func TestVoiceProfileUpdateRank(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := repos.NewVoiceProfileRepo(db, log)

	testutil.SeedProfile(t, ctx, tx, "creator-c", 0, 10)
	testutil.SeedProfile(t, ctx, tx, "creator-c", 1, 30)
	testutil.SeedProfile(t, ctx, tx, "creator-c", 2, 20)

	ranks := map[int]int{1: 1, 2: 2, 0: 3}
	for clusterID, rank := range ranks {
		if err := repo.UpdateRank(ctx, tx, "creator-c", clusterID, rank); err != nil {
			t.Fatalf("update rank: %v", err)
		}
	}

	got, err := repo.GetByCreator(ctx, tx, "creator-c")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for _, p := range got {
		if p.PerformanceRank != ranks[p.ClusterID] {
			t.Fatalf("cluster %d: rank %d, want %d", p.ClusterID, p.PerformanceRank, ranks[p.ClusterID])
		}
	}
}
