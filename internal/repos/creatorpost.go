package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kaive-ai/kaive-backend/internal/logger"
  "github.com/kaive-ai/kaive-backend/internal/types"
)

type CreatorPostRepo interface {
  Create(ctx context.Context, tx *gorm.DB, posts []*types.CreatorPost) ([]*types.CreatorPost, error)
  GetByAuthor(ctx context.Context, tx *gorm.DB, author string) ([]*types.CreatorPost, error)
  GetClusteredByAuthor(ctx context.Context, tx *gorm.DB, author string) ([]*types.CreatorPost, error)
  CountByAuthor(ctx context.Context, tx *gorm.DB, author string) (int64, error)
  HasClusterAssignments(ctx context.Context, tx *gorm.DB, author string) (bool, error)

  // UpdateClusterIDs writes one cluster id per post, issued as individual
  // updates grouped into chunks of chunkSize. A failed row is counted and
  // skipped, not fatal; re-running clustering supersedes partial state.
  UpdateClusterIDs(ctx context.Context, tx *gorm.DB, assignments []types.ClusterAssignment, chunkSize int) (updated int, failed int, err error)

  CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
  CountDistinctAuthors(ctx context.Context, tx *gorm.DB) (int64, error)
}

type creatorPostRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCreatorPostRepo(db *gorm.DB, baseLog *logger.Logger) CreatorPostRepo {
  repoLog := baseLog.With("repo", "CreatorPostRepo")
  return &creatorPostRepo{db: db, log: repoLog}
}

func (r *creatorPostRepo) Create(ctx context.Context, tx *gorm.DB, posts []*types.CreatorPost) ([]*types.CreatorPost, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(posts) == 0 {
    return []*types.CreatorPost{}, nil
  }
  if err := transaction.WithContext(ctx).CreateInBatches(&posts, 100).Error; err != nil {
    return nil, err
  }
  return posts, nil
}

func (r *creatorPostRepo) GetByAuthor(ctx context.Context, tx *gorm.DB, author string) ([]*types.CreatorPost, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.CreatorPost
  if author == "" {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("author = ?", author).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *creatorPostRepo) GetClusteredByAuthor(ctx context.Context, tx *gorm.DB, author string) ([]*types.CreatorPost, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.CreatorPost
  if author == "" {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("author = ? AND cluster_id IS NOT NULL", author).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *creatorPostRepo) CountByAuthor(ctx context.Context, tx *gorm.DB, author string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.CreatorPost{}).
    Where("author = ?", author).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}

func (r *creatorPostRepo) HasClusterAssignments(ctx context.Context, tx *gorm.DB, author string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.CreatorPost{}).
    Where("author = ? AND cluster_id IS NOT NULL", author).
    Limit(1).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (r *creatorPostRepo) UpdateClusterIDs(ctx context.Context, tx *gorm.DB, assignments []types.ClusterAssignment, chunkSize int) (int, int, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(assignments) == 0 {
    return 0, 0, nil
  }
  if chunkSize <= 0 {
    chunkSize = 50
  }

  updated := 0
  failed := 0
  for start := 0; start < len(assignments); start += chunkSize {
    end := start + chunkSize
    if end > len(assignments) {
      end = len(assignments)
    }
    for _, a := range assignments[start:end] {
      if a.PostID == uuid.Nil {
        failed++
        continue
      }
      if err := transaction.WithContext(ctx).
        Model(&types.CreatorPost{}).
        Where("id = ?", a.PostID).
        Update("cluster_id", a.ClusterID).Error; err != nil {
        r.log.Warn("Failed to update cluster id", "post_id", a.PostID, "cluster_id", a.ClusterID, "error", err)
        failed++
        continue
      }
      updated++
    }
  }
  return updated, failed, nil
}

func (r *creatorPostRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.CreatorPost{}).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}

func (r *creatorPostRepo) CountDistinctAuthors(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.CreatorPost{}).
    Distinct("author").
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
