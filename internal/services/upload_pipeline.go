package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "sync"
  "time"

  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"
  "gorm.io/datatypes"

  "github.com/kaive-ai/kaive-backend/internal/cluster"
  "github.com/kaive-ai/kaive-backend/internal/ingest"
  "github.com/kaive-ai/kaive-backend/internal/logger"
  "github.com/kaive-ai/kaive-backend/internal/repos"
  "github.com/kaive-ai/kaive-backend/internal/types"
  "github.com/kaive-ai/kaive-backend/internal/utils"
  "github.com/kaive-ai/kaive-backend/internal/voice"
)

// ErrQueueFull is returned by Enqueue when the processing queue is at
// capacity. The upload record is already marked failed when this is returned.
var ErrQueueFull = errors.New("upload processing queue is full")

const clusterUpdateChunkSize = 50

type UploadPipelineService interface {
  // Enqueue records the upload and hands it to a background worker. The
  // returned id tracks processing status.
  Enqueue(ctx context.Context, filename string, posts []*types.CreatorPost) (uuid.UUID, error)

  // StartWorkers launches the background workers. They exit when ctx is
  // cancelled.
  StartWorkers(ctx context.Context)

  // ProcessCreator reclusters all of one creator's posts and regenerates
  // their voice profiles. Used by the manual clustering endpoint.
  ProcessCreator(ctx context.Context, creator string) (int, error)
}

type uploadJob struct {
  fileID   uuid.UUID
  filename string
  posts    []*types.CreatorPost
}

type uploadPipelineService struct {
  log      *logger.Logger
  posts    repos.CreatorPostRepo
  profiles repos.VoiceProfileRepo
  uploads  repos.UploadedFileRepo
  embedder EmbeddingService
  voices   VoiceProfileService
  cache    *voice.ParseCache

  jobs         chan uploadJob
  workerCount  int
  clusterCount int
  creatorLimit int
}

func NewUploadPipelineService(
  log *logger.Logger,
  posts repos.CreatorPostRepo,
  profiles repos.VoiceProfileRepo,
  uploads repos.UploadedFileRepo,
  embedder EmbeddingService,
  voices VoiceProfileService,
  cache *voice.ParseCache,
) UploadPipelineService {
  workerCount := utils.GetEnvAsInt("UPLOAD_WORKER_COUNT", 4, log)
  if workerCount <= 0 {
    workerCount = 4
  }
  queueSize := utils.GetEnvAsInt("UPLOAD_QUEUE_SIZE", 16, log)
  if queueSize <= 0 {
    queueSize = 16
  }
  clusterCount := utils.GetEnvAsInt("CLUSTER_COUNT", 4, log)
  if clusterCount <= 0 {
    clusterCount = 4
  }
  creatorLimit := utils.GetEnvAsInt("CREATOR_CONCURRENCY", 4, log)
  if creatorLimit <= 0 {
    creatorLimit = 4
  }

  return &uploadPipelineService{
    log:          log.With("service", "UploadPipelineService"),
    posts:        posts,
    profiles:     profiles,
    uploads:      uploads,
    embedder:     embedder,
    voices:       voices,
    cache:        cache,
    jobs:         make(chan uploadJob, queueSize),
    workerCount:  workerCount,
    clusterCount: clusterCount,
    creatorLimit: creatorLimit,
  }
}

func (s *uploadPipelineService) StartWorkers(ctx context.Context) {
  for i := 0; i < s.workerCount; i++ {
    go s.worker(ctx, i)
  }
  s.log.Info("Upload workers started", "count", s.workerCount)
}

func (s *uploadPipelineService) worker(ctx context.Context, id int) {
  log := s.log.With("worker", id)
  for {
    select {
    case <-ctx.Done():
      log.Info("Upload worker stopping")
      return
    case job := <-s.jobs:
      log.Info("Processing upload", "file_id", job.fileID, "filename", job.filename, "posts", len(job.posts))
      s.processUpload(ctx, job)
    }
  }
}

func (s *uploadPipelineService) Enqueue(ctx context.Context, filename string, posts []*types.CreatorPost) (uuid.UUID, error) {
  now := time.Now().UTC()
  record := &types.UploadedFile{
    ID:        uuid.New(),
    Filename:  filename,
    Status:    types.UploadStatusProcessing,
    CreatedAt: now,
    UpdatedAt: now,
  }
  if _, err := s.uploads.Create(ctx, nil, []*types.UploadedFile{record}); err != nil {
    return uuid.Nil, fmt.Errorf("create upload record: %w", err)
  }

  job := uploadJob{fileID: record.ID, filename: filename, posts: posts}
  select {
  case s.jobs <- job:
    return record.ID, nil
  default:
    s.markStatus(context.WithoutCancel(ctx), record.ID, types.UploadStatusFailed, map[string]interface{}{
      "error_message": ErrQueueFull.Error(),
    })
    return record.ID, ErrQueueFull
  }
}

// processUpload runs the full pipeline for one uploaded batch: dedup per
// author, embed, insert, cluster, and regenerate voice profiles. Status
// transitions on the upload record mirror each stage.
func (s *uploadPipelineService) processUpload(ctx context.Context, job uploadJob) {
  start := time.Now()

  byAuthor := map[string][]*types.CreatorPost{}
  for _, p := range job.posts {
    if p == nil || p.Author == "" || p.PostContent == "" {
      continue
    }
    byAuthor[p.Author] = append(byAuthor[p.Author], p)
  }

  unique := make([]*types.CreatorPost, 0, len(job.posts))
  duplicates := 0
  for author, candidates := range byAuthor {
    existing, err := s.posts.GetByAuthor(ctx, nil, author)
    if err != nil {
      s.failUpload(ctx, job.fileID, fmt.Errorf("fetch existing posts for %s: %w", author, err))
      return
    }
    kept, dupes := ingest.Deduplicate(candidates, existing)
    unique = append(unique, kept...)
    duplicates += dupes
  }

  texts := make([]string, len(unique))
  for i, p := range unique {
    texts[i] = p.PostContent
  }
  vectors := s.embedder.EmbedBatch(ctx, texts)

  now := time.Now().UTC()
  for i, p := range unique {
    p.ID = uuid.New()
    p.CreatedAt = now
    p.UpdatedAt = now
    if vectors[i] != nil {
      if raw, err := json.Marshal(vectors[i]); err == nil {
        p.Embedding = datatypes.JSON(raw)
      }
    }
  }

  if _, err := s.posts.Create(ctx, nil, unique); err != nil {
    s.failUpload(ctx, job.fileID, fmt.Errorf("insert posts: %w", err))
    return
  }

  s.markStatus(ctx, job.fileID, types.UploadStatusPostsSaved, map[string]interface{}{
    "total_posts":     len(unique),
    "new_posts":       len(unique),
    "duplicate_posts": duplicates,
  })

  newByAuthor := map[string][]*types.CreatorPost{}
  for _, p := range unique {
    newByAuthor[p.Author] = append(newByAuthor[p.Author], p)
  }

  var (
    mu            sync.Mutex
    profilesCount int
    lastErr       error
  )

  g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
  g.SetLimit(s.creatorLimit)
  for author := range byAuthor {
    author := author
    g.Go(func() error {
      count, err := s.processCreator(gctx, author, newByAuthor[author])
      mu.Lock()
      defer mu.Unlock()
      if err != nil {
        s.log.Error("Creator processing failed", "file_id", job.fileID, "creator", author, "error", err)
        lastErr = err
        return nil
      }
      profilesCount += count
      return nil
    })
  }
  _ = g.Wait()

  s.finalizeUpload(ctx, job.fileID, profilesCount, lastErr)

  s.log.Info("Upload processed",
    "file_id", job.fileID,
    "filename", job.filename,
    "new_posts", len(unique),
    "duplicates", duplicates,
    "voice_profiles", profilesCount,
    "elapsed", time.Since(start).String(),
  )
}

// processCreator chooses a clustering strategy for one creator and then
// regenerates their voice profiles. A creator present in the upload with no
// new posts still gets profiles if they have posts but none yet.
func (s *uploadPipelineService) processCreator(ctx context.Context, creator string, newPosts []*types.CreatorPost) (int, error) {
  if len(newPosts) > 0 {
    total, err := s.posts.CountByAuthor(ctx, nil, creator)
    if err != nil {
      return 0, fmt.Errorf("count posts for %s: %w", creator, err)
    }
    hasClusters, err := s.posts.HasClusterAssignments(ctx, nil, creator)
    if err != nil {
      return 0, fmt.Errorf("check cluster assignments for %s: %w", creator, err)
    }

    if cluster.ShouldFullRecluster(int(total), len(newPosts), hasClusters) {
      s.log.Info("Reclustering all posts", "creator", creator, "total", total, "new", len(newPosts))
      if err := s.reclusterCreator(ctx, creator); err != nil {
        return 0, err
      }
    } else {
      s.log.Info("Clustering new posts only", "creator", creator, "new", len(newPosts))
      if err := s.clusterPosts(ctx, creator, newPosts); err != nil {
        return 0, err
      }
    }
  } else {
    total, err := s.posts.CountByAuthor(ctx, nil, creator)
    if err != nil {
      return 0, fmt.Errorf("count posts for %s: %w", creator, err)
    }
    if total == 0 {
      return 0, nil
    }
    profileCount, err := s.profiles.CountByCreator(ctx, nil, creator)
    if err != nil {
      return 0, fmt.Errorf("count profiles for %s: %w", creator, err)
    }
    if profileCount > 0 {
      // Already clustered and profiled, nothing new to fold in.
      return 0, nil
    }
    s.log.Info("Existing posts without profiles, reclustering", "creator", creator, "total", total)
    if err := s.reclusterCreator(ctx, creator); err != nil {
      return 0, err
    }
  }

  return s.voices.GenerateForCreator(ctx, creator)
}

// reclusterCreator repartitions every post of the creator that has a
// decodable embedding.
func (s *uploadPipelineService) reclusterCreator(ctx context.Context, creator string) error {
  posts, err := s.posts.GetByAuthor(ctx, nil, creator)
  if err != nil {
    return fmt.Errorf("fetch posts for %s: %w", creator, err)
  }
  return s.clusterPosts(ctx, creator, posts)
}

func (s *uploadPipelineService) clusterPosts(ctx context.Context, creator string, posts []*types.CreatorPost) error {
  ids := make([]uuid.UUID, 0, len(posts))
  vecs := make([][]float32, 0, len(posts))
  for _, p := range posts {
    if p == nil {
      continue
    }
    v, ok := s.cache.Decode(p.Embedding)
    if !ok {
      continue
    }
    ids = append(ids, p.ID)
    vecs = append(vecs, v)
  }
  if len(vecs) == 0 {
    s.log.Warn("No embeddings to cluster", "creator", creator)
    return nil
  }

  labels := cluster.Partition(vecs, s.clusterCount)

  assignments := make([]types.ClusterAssignment, len(ids))
  for i := range ids {
    assignments[i] = types.ClusterAssignment{PostID: ids[i], ClusterID: labels[i]}
  }

  updated, failed, err := s.posts.UpdateClusterIDs(ctx, nil, assignments, clusterUpdateChunkSize)
  if err != nil {
    return fmt.Errorf("update cluster ids for %s: %w", creator, err)
  }
  s.log.Info("Cluster assignments written", "creator", creator, "updated", updated, "failed", failed)
  return nil
}

func (s *uploadPipelineService) ProcessCreator(ctx context.Context, creator string) (int, error) {
  if err := s.reclusterCreator(ctx, creator); err != nil {
    return 0, err
  }
  return s.voices.GenerateForCreator(ctx, creator)
}

// finalizeUpload writes the terminal status for an upload. The write is
// detached from ctx cancellation so a shutdown mid-generation still records
// the outcome.
func (s *uploadPipelineService) finalizeUpload(ctx context.Context, id uuid.UUID, profilesCount int, lastErr error) {
  bg := context.WithoutCancel(ctx)
  if lastErr != nil {
    s.markStatus(bg, id, types.UploadStatusVoiceProfileFailed, map[string]interface{}{
      "voice_profiles_count": profilesCount,
      "error_message":        lastErr.Error(),
    })
    return
  }
  s.markStatus(bg, id, types.UploadStatusCompleted, map[string]interface{}{
    "voice_profiles_count": profilesCount,
  })
}

func (s *uploadPipelineService) markStatus(ctx context.Context, id uuid.UUID, status string, extra map[string]interface{}) {
  updates := map[string]interface{}{
    "status":     status,
    "updated_at": time.Now().UTC(),
  }
  for k, v := range extra {
    updates[k] = v
  }
  if err := s.uploads.UpdateFields(ctx, nil, id, updates); err != nil {
    s.log.Error("Failed to update upload status", "file_id", id, "status", status, "error", err)
  }
}

func (s *uploadPipelineService) failUpload(ctx context.Context, id uuid.UUID, cause error) {
  s.log.Error("Upload processing failed", "file_id", id, "error", cause)
  s.markStatus(ctx, id, types.UploadStatusFailed, map[string]interface{}{
    "error_message": cause.Error(),
  })
}
