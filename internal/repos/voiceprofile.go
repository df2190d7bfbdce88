package repos

import (
  "context"
  "time"

  "gorm.io/gorm"

  "github.com/kaive-ai/kaive-backend/internal/logger"
  "github.com/kaive-ai/kaive-backend/internal/types"
)

type VoiceProfileRepo interface {
  GetByCreator(ctx context.Context, tx *gorm.DB, creator string) ([]*types.CreatorVoiceProfile, error)

  // ExistingClusterIDs answers "which of these clusters already have a
  // profile row" in a single query.
  ExistingClusterIDs(ctx context.Context, tx *gorm.DB, creator string, clusterIDs []int) (map[int]bool, error)

  Create(ctx context.Context, tx *gorm.DB, profiles []*types.CreatorVoiceProfile) ([]*types.CreatorVoiceProfile, error)

  // UpdateByCreatorCluster rewrites the derived fields of one existing
  // profile row. created_at is left untouched.
  UpdateByCreatorCluster(ctx context.Context, tx *gorm.DB, profile *types.CreatorVoiceProfile) error

  UpdateRank(ctx context.Context, tx *gorm.DB, creator string, clusterID int, rank int) error
  CountByCreator(ctx context.Context, tx *gorm.DB, creator string) (int64, error)
}

type voiceProfileRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewVoiceProfileRepo(db *gorm.DB, baseLog *logger.Logger) VoiceProfileRepo {
  repoLog := baseLog.With("repo", "VoiceProfileRepo")
  return &voiceProfileRepo{db: db, log: repoLog}
}

func (r *voiceProfileRepo) GetByCreator(ctx context.Context, tx *gorm.DB, creator string) ([]*types.CreatorVoiceProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.CreatorVoiceProfile
  if creator == "" {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("creator = ?", creator).
    Order("cluster_id ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *voiceProfileRepo) ExistingClusterIDs(ctx context.Context, tx *gorm.DB, creator string, clusterIDs []int) (map[int]bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  existing := map[int]bool{}
  if creator == "" || len(clusterIDs) == 0 {
    return existing, nil
  }
  var found []int
  if err := transaction.WithContext(ctx).
    Model(&types.CreatorVoiceProfile{}).
    Where("creator = ? AND cluster_id IN ?", creator, clusterIDs).
    Pluck("cluster_id", &found).Error; err != nil {
    return nil, err
  }
  for _, id := range found {
    existing[id] = true
  }
  return existing, nil
}

func (r *voiceProfileRepo) Create(ctx context.Context, tx *gorm.DB, profiles []*types.CreatorVoiceProfile) ([]*types.CreatorVoiceProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(profiles) == 0 {
    return []*types.CreatorVoiceProfile{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&profiles).Error; err != nil {
    return nil, err
  }
  return profiles, nil
}

func (r *voiceProfileRepo) UpdateByCreatorCluster(ctx context.Context, tx *gorm.DB, profile *types.CreatorVoiceProfile) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if profile == nil {
    return nil
  }
  updates := map[string]interface{}{
    "cluster_name":         profile.ClusterName,
    "cluster_description":  profile.ClusterDescription,
    "voice_schema":         profile.VoiceSchema,
    "engagement":           profile.Engagement,
    "post_characteristics": profile.PostCharacteristics,
    "top_post_ids":         profile.TopPostIDs,
    "total_engagement":     profile.TotalEngagement,
    "updated_at":           time.Now().UTC(),
  }
  return transaction.WithContext(ctx).
    Model(&types.CreatorVoiceProfile{}).
    Where("creator = ? AND cluster_id = ?", profile.Creator, profile.ClusterID).
    Updates(updates).Error
}

func (r *voiceProfileRepo) UpdateRank(ctx context.Context, tx *gorm.DB, creator string, clusterID int, rank int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).
    Model(&types.CreatorVoiceProfile{}).
    Where("creator = ? AND cluster_id = ?", creator, clusterID).
    Updates(map[string]interface{}{
      "performance_rank": rank,
      "updated_at":       time.Now().UTC(),
    }).Error
}

func (r *voiceProfileRepo) CountByCreator(ctx context.Context, tx *gorm.DB, creator string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.CreatorVoiceProfile{}).
    Where("creator = ?", creator).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
