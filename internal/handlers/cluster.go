package handlers

import (
  "context"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/kaive-ai/kaive-backend/internal/logger"
  "github.com/kaive-ai/kaive-backend/internal/repos"
  "github.com/kaive-ai/kaive-backend/internal/services"
)

type ClusterHandler struct {
  log      *logger.Logger
  pipeline services.UploadPipelineService
  posts    repos.CreatorPostRepo
}

func NewClusterHandler(log *logger.Logger, pipeline services.UploadPipelineService, posts repos.CreatorPostRepo) *ClusterHandler {
  return &ClusterHandler{
    log:      log.With("handler", "ClusterHandler"),
    pipeline: pipeline,
    posts:    posts,
  }
}

// Cluster kicks off a full recluster and profile regeneration for one
// creator. The work runs in the background; the response only confirms it
// started.
func (ch *ClusterHandler) Cluster(c *gin.Context) {
  creator := c.Param("creator")
  if creator == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "missing creator"})
    return
  }

  count, err := ch.posts.CountByAuthor(c.Request.Context(), nil, creator)
  if err != nil {
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }
  if count == 0 {
    c.JSON(http.StatusNotFound, gin.H{"error": "no posts found for " + creator})
    return
  }

  go func() {
    if _, err := ch.pipeline.ProcessCreator(context.Background(), creator); err != nil {
      ch.log.Error("Manual clustering failed", "creator", creator, "error", err)
    }
  }()

  c.JSON(http.StatusOK, gin.H{
    "status":     "processing",
    "message":    "Clustering and voice profile generation started for " + creator,
    "post_count": count,
  })
}
