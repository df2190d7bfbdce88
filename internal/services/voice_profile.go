package services

import (
  "context"
  "encoding/json"
  "fmt"
  "sort"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/kaive-ai/kaive-backend/internal/logger"
  "github.com/kaive-ai/kaive-backend/internal/repos"
  "github.com/kaive-ai/kaive-backend/internal/types"
  "github.com/kaive-ai/kaive-backend/internal/voice"
)

const (
  labelTimeout     = 10 * time.Second
  labelTemperature = 0.7
  labelMaxTokens   = 150
)

type VoiceProfileService interface {
  // GenerateForCreator rebuilds every voice profile for one creator from
  // their clustered posts and returns the number of profiles written.
  GenerateForCreator(ctx context.Context, creator string) (int, error)
}

type voiceProfileService struct {
  log      *logger.Logger
  posts    repos.CreatorPostRepo
  profiles repos.VoiceProfileRepo
  client   OpenAIClient
  cache    *voice.ParseCache
}

func NewVoiceProfileService(
  log *logger.Logger,
  posts repos.CreatorPostRepo,
  profiles repos.VoiceProfileRepo,
  client OpenAIClient,
  cache *voice.ParseCache,
) VoiceProfileService {
  return &voiceProfileService{
    log:      log.With("service", "VoiceProfileService"),
    posts:    posts,
    profiles: profiles,
    client:   client,
    cache:    cache,
  }
}

func (s *voiceProfileService) GenerateForCreator(ctx context.Context, creator string) (int, error) {
  start := time.Now()

  posts, err := s.posts.GetClusteredByAuthor(ctx, nil, creator)
  if err != nil {
    return 0, fmt.Errorf("fetch clustered posts for %s: %w", creator, err)
  }
  if len(posts) == 0 {
    s.log.Warn("No clustered posts for creator", "creator", creator)
    return 0, nil
  }

  postsByCluster := map[int][]*types.CreatorPost{}
  for _, p := range posts {
    if p == nil || p.ClusterID == nil {
      continue
    }
    postsByCluster[*p.ClusterID] = append(postsByCluster[*p.ClusterID], p)
  }

  metrics := voice.AggregateMetrics(postsByCluster)
  if len(metrics) == 0 {
    s.log.Warn("No usable cluster content for creator", "creator", creator)
    return 0, nil
  }

  clusterIDs := make([]int, 0, len(metrics))
  for id := range metrics {
    clusterIDs = append(clusterIDs, id)
  }
  sort.Ints(clusterIDs)

  built := make([]*types.CreatorVoiceProfile, 0, len(clusterIDs))
  for _, clusterID := range clusterIDs {
    clusterPosts := postsByCluster[clusterID]
    representative := voice.SelectRepresentative(clusterPosts, s.cache)
    name, description := s.generateLabel(ctx, creator, clusterID, representative, len(clusterPosts))
    built = append(built, s.buildProfile(creator, clusterID, name, description, metrics[clusterID]))
    s.log.Info("Prepared voice profile", "creator", creator, "cluster_id", clusterID, "name", name)
  }

  saved, err := s.reconcileProfiles(ctx, creator, built)
  if err != nil {
    return saved, err
  }

  if err := s.updatePerformanceRanks(ctx, creator); err != nil {
    s.log.Error("Failed to update performance ranks", "creator", creator, "error", err)
  }

  s.log.Info("Generated voice profiles",
    "creator", creator,
    "profiles", saved,
    "elapsed", time.Since(start).String(),
  )
  return saved, nil
}

// generateLabel asks the model for a short name and one-line description of
// the cluster. Any failure falls back to a deterministic label so profile
// generation never blocks on the model.
func (s *voiceProfileService) generateLabel(ctx context.Context, creator string, clusterID int, posts []*types.CreatorPost, totalPosts int) (string, string) {
  prompt := voice.BuildLabelPrompt(creator, clusterID, posts, totalPosts)

  labelCtx, cancel := context.WithTimeout(ctx, labelTimeout)
  defer cancel()

  response, err := s.client.GenerateText(labelCtx, voice.LabelSystemRole, prompt, labelTemperature, labelMaxTokens)
  if err != nil {
    s.log.Warn("Label generation failed, using fallback", "creator", creator, "cluster_id", clusterID, "error", err)
    return voice.FallbackLabel(clusterID)
  }
  return voice.ParseLabelResponse(response)
}

func (s *voiceProfileService) buildProfile(creator string, clusterID int, name, description string, m voice.ClusterMetrics) *types.CreatorVoiceProfile {
  structureType := "single-paragraph"
  if m.AvgParagraphsPerPost > 1 {
    structureType = "multi-paragraph"
  }

  voiceSchema := mustJSON(map[string]interface{}{
    "line_style": map[string]interface{}{
      "avg_words_per_sentence":    m.AvgWordsPerSentence,
      "line_breaks_per_100_words": m.LineBreaksPer100Words,
    },
    "punctuation": map[string]interface{}{
      "em_dashes_per_100_words":    m.EmDashesPer100Words,
      "ellipses_per_100_words":     m.EllipsesPer100Words,
      "questions_per_100_words":    m.QuestionsPer100Words,
      "exclamations_per_100_words": m.ExclamationsPer100Words,
    },
    "structure": map[string]interface{}{
      "avg_paragraphs_per_post": m.AvgParagraphsPerPost,
      "avg_words_per_post":      m.AvgWordsPerPost,
    },
  })

  engagement := mustJSON(map[string]interface{}{
    "avg_likes":        m.AvgLikes,
    "avg_comments":     m.AvgComments,
    "avg_reposts":      m.AvgReposts,
    "total_engagement": m.TotalEngagement,
  })

  characteristics := mustJSON(map[string]interface{}{
    "avg_word_count": m.AvgWordsPerPost,
    "avg_paragraphs": m.AvgParagraphsPerPost,
    "structure_type": structureType,
  })

  return &types.CreatorVoiceProfile{
    ID:                  uuid.New(),
    Creator:             creator,
    ClusterID:           clusterID,
    ClusterName:         name,
    ClusterDescription:  description,
    VoiceSchema:         voiceSchema,
    Engagement:          engagement,
    PostCharacteristics: characteristics,
    TopPostIDs:          mustJSON(m.TopPostIDs),
    PerformanceRank:     0,
    TotalEngagement:     m.TotalEngagement,
  }
}

// reconcileProfiles splits built profiles into inserts and updates using one
// existence query, batch-inserts the new rows, and updates the rest row by
// row. A failed row is logged and skipped.
func (s *voiceProfileService) reconcileProfiles(ctx context.Context, creator string, built []*types.CreatorVoiceProfile) (int, error) {
  if len(built) == 0 {
    return 0, nil
  }

  clusterIDs := make([]int, 0, len(built))
  for _, p := range built {
    clusterIDs = append(clusterIDs, p.ClusterID)
  }

  existing, err := s.profiles.ExistingClusterIDs(ctx, nil, creator, clusterIDs)
  if err != nil {
    return 0, fmt.Errorf("check existing profiles for %s: %w", creator, err)
  }

  toInsert := make([]*types.CreatorVoiceProfile, 0, len(built))
  toUpdate := make([]*types.CreatorVoiceProfile, 0, len(built))
  for _, p := range built {
    if existing[p.ClusterID] {
      toUpdate = append(toUpdate, p)
    } else {
      toInsert = append(toInsert, p)
    }
  }

  saved := 0
  if len(toInsert) > 0 {
    if _, err := s.profiles.Create(ctx, nil, toInsert); err != nil {
      s.log.Error("Batch profile insert failed", "creator", creator, "count", len(toInsert), "error", err)
    } else {
      saved += len(toInsert)
    }
  }

  for _, p := range toUpdate {
    if err := s.profiles.UpdateByCreatorCluster(ctx, nil, p); err != nil {
      s.log.Error("Profile update failed", "creator", creator, "cluster_id", p.ClusterID, "error", err)
      continue
    }
    saved++
  }

  return saved, nil
}

func (s *voiceProfileService) updatePerformanceRanks(ctx context.Context, creator string) error {
  profiles, err := s.profiles.GetByCreator(ctx, nil, creator)
  if err != nil {
    return err
  }
  if len(profiles) == 0 {
    return nil
  }

  sortProfilesForRank(profiles)

  for rank, p := range profiles {
    if err := s.profiles.UpdateRank(ctx, nil, creator, p.ClusterID, rank+1); err != nil {
      s.log.Error("Rank update failed", "creator", creator, "cluster_id", p.ClusterID, "error", err)
    }
  }
  return nil
}

// sortProfilesForRank orders profiles highest total engagement first, ties
// broken by ascending cluster id.
func sortProfilesForRank(profiles []*types.CreatorVoiceProfile) {
  sort.SliceStable(profiles, func(i, j int) bool {
    if profiles[i].TotalEngagement != profiles[j].TotalEngagement {
      return profiles[i].TotalEngagement > profiles[j].TotalEngagement
    }
    return profiles[i].ClusterID < profiles[j].ClusterID
  })
}

func mustJSON(v interface{}) datatypes.JSON {
  raw, err := json.Marshal(v)
  if err != nil {
    return datatypes.JSON([]byte("null"))
  }
  return datatypes.JSON(raw)
}
