package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kaive-ai/kaive-backend/internal/logger"
  "github.com/kaive-ai/kaive-backend/internal/types"
)

type UploadedFileRepo interface {
  Create(ctx context.Context, tx *gorm.DB, records []*types.UploadedFile) ([]*types.UploadedFile, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.UploadedFile, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
  CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type uploadedFileRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUploadedFileRepo(db *gorm.DB, baseLog *logger.Logger) UploadedFileRepo {
  repoLog := baseLog.With("repo", "UploadedFileRepo")
  return &uploadedFileRepo{db: db, log: repoLog}
}

func (r *uploadedFileRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.UploadedFile) ([]*types.UploadedFile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(records) == 0 {
    return []*types.UploadedFile{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
    return nil, err
  }
  return records, nil
}

func (r *uploadedFileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.UploadedFile, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.UploadedFile
  if len(ids) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *uploadedFileRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil || len(updates) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.UploadedFile{}).
    Where("id = ?", id).
    Updates(updates).Error
}

func (r *uploadedFileRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.UploadedFile{}).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
