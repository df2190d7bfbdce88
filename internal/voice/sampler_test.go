package voice

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/kaive-ai/kaive-backend/internal/types"
)

func samplerPost(t *testing.T, likes int, embedding []float32) *types.CreatorPost {
	t.Helper()
	p := &types.CreatorPost{
		ID:          uuid.New(),
		Author:      "creator",
		PostContent: fmt.Sprintf("post with %d likes", likes),
		LikeCount:   likes,
	}
	if embedding != nil {
		raw, err := json.Marshal(embedding)
		if err != nil {
			t.Fatalf("marshal embedding: %v", err)
		}
		p.Embedding = datatypes.JSON(raw)
	}
	return p
}

func newTestCache(t *testing.T) *ParseCache {
	t.Helper()
	cache, err := NewParseCache(100)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return cache
}

func TestSelectRepresentativePassthrough(t *testing.T) {
	cache := newTestCache(t)
	posts := make([]*types.CreatorPost, 6)
	for i := range posts {
		posts[i] = samplerPost(t, i, []float32{float32(i), 1})
	}
	got := SelectRepresentative(posts, cache)
	if len(got) != 6 {
		t.Fatalf("expected passthrough of 6 posts, got %d", len(got))
	}
	for i := range posts {
		if got[i] != posts[i] {
			t.Fatalf("passthrough must preserve order at %d", i)
		}
	}
}

func TestSelectRepresentativeExactlySix(t *testing.T) {
	cache := newTestCache(t)
	posts := make([]*types.CreatorPost, 12)
	for i := range posts {
		posts[i] = samplerPost(t, i*10, []float32{float32(i), float32(12 - i)})
	}
	got := SelectRepresentative(posts, cache)
	if len(got) != 6 {
		t.Fatalf("expected exactly 6 posts, got %d", len(got))
	}
	seen := map[uuid.UUID]bool{}
	for _, p := range got {
		if seen[p.ID] {
			t.Fatalf("duplicate post %s in selection", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestSelectRepresentativeTopsUpWhenEngagementPickOverlaps(t *testing.T) {
	cache := newTestCache(t)
	// 7 posts, all with embeddings. The highest-engagement post sits right
	// at the centroid, so the engagement pick duplicates a centroid pick
	// and the selection must fill back up from the similarity ranking.
	posts := []*types.CreatorPost{
		samplerPost(t, 1000, []float32{1, 1}),
		samplerPost(t, 10, []float32{1.2, 0.8}),
		samplerPost(t, 20, []float32{0.8, 1.2}),
		samplerPost(t, 30, []float32{2, 0}),
		samplerPost(t, 40, []float32{0, 2}),
		samplerPost(t, 50, []float32{3, 1}),
		samplerPost(t, 60, []float32{1, 3}),
	}
	got := SelectRepresentative(posts, cache)
	if len(got) != 6 {
		t.Fatalf("expected exactly 6 posts, got %d", len(got))
	}
	seen := map[uuid.UUID]bool{}
	for _, p := range got {
		if seen[p.ID] {
			t.Fatalf("duplicate post %s in selection", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestSelectRepresentativeEngagementFallback(t *testing.T) {
	cache := newTestCache(t)
	// 8 posts but only 3 decodable embeddings: engagement fallback kicks in.
	posts := make([]*types.CreatorPost, 8)
	for i := range posts {
		var emb []float32
		if i < 3 {
			emb = []float32{float32(i), 1}
		}
		posts[i] = samplerPost(t, i, emb)
	}
	got := SelectRepresentative(posts, cache)
	if len(got) != 6 {
		t.Fatalf("expected 6 posts from fallback, got %d", len(got))
	}
	// Highest engagement first.
	if got[0].LikeCount != 7 {
		t.Fatalf("expected top engagement first, got %d likes", got[0].LikeCount)
	}
}
