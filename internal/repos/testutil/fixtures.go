package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kaive-ai/kaive-backend/internal/types"
)

func SeedPost(tb testing.TB, ctx context.Context, tx *gorm.DB, author, content string) *types.CreatorPost {
	tb.Helper()
	now := time.Now().UTC()
	p := &types.CreatorPost{
		ID:            uuid.New(),
		Author:        author,
		PostContent:   content,
		PostDate:      now.Format("2006-01-02"),
		PostTimestamp: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed post: %v", err)
	}
	return p
}

func SeedClusteredPost(tb testing.TB, ctx context.Context, tx *gorm.DB, author, content string, clusterID int, embedding []float32) *types.CreatorPost {
	tb.Helper()
	now := time.Now().UTC()
	p := &types.CreatorPost{
		ID:            uuid.New(),
		Author:        author,
		PostContent:   content,
		PostDate:      now.Format("2006-01-02"),
		PostTimestamp: now,
		ClusterID:     &clusterID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if embedding != nil {
		raw, err := json.Marshal(embedding)
		if err != nil {
			tb.Fatalf("marshal embedding: %v", err)
		}
		p.Embedding = datatypes.JSON(raw)
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed clustered post: %v", err)
	}
	return p
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, creator string, clusterID int, totalEngagement float64) *types.CreatorVoiceProfile {
	tb.Helper()
	now := time.Now().UTC()
	vp := &types.CreatorVoiceProfile{
		ID:                  uuid.New(),
		Creator:             creator,
		ClusterID:           clusterID,
		ClusterName:         "Content Series",
		ClusterDescription:  "A collection of related posts",
		VoiceSchema:         datatypes.JSON([]byte("{}")),
		Engagement:          datatypes.JSON([]byte("{}")),
		PostCharacteristics: datatypes.JSON([]byte("{}")),
		TopPostIDs:          datatypes.JSON([]byte("[]")),
		TotalEngagement:     totalEngagement,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := tx.WithContext(ctx).Create(vp).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return vp
}
