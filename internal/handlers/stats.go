package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/kaive-ai/kaive-backend/internal/repos"
)

type StatsHandler struct {
  posts   repos.CreatorPostRepo
  uploads repos.UploadedFileRepo
}

func NewStatsHandler(posts repos.CreatorPostRepo, uploads repos.UploadedFileRepo) *StatsHandler {
  return &StatsHandler{posts: posts, uploads: uploads}
}

func (sh *StatsHandler) Stats(c *gin.Context) {
  ctx := c.Request.Context()

  totalPosts, err := sh.posts.CountAll(ctx, nil)
  if err != nil {
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }
  uniqueAuthors, err := sh.posts.CountDistinctAuthors(ctx, nil)
  if err != nil {
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }
  filesProcessed, err := sh.uploads.CountAll(ctx, nil)
  if err != nil {
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }

  c.JSON(http.StatusOK, gin.H{
    "total_posts":     totalPosts,
    "unique_authors":  uniqueAuthors,
    "files_processed": filesProcessed,
  })
}
