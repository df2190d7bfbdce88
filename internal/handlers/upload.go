package handlers

import (
  "errors"
  "net/http"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kaive-ai/kaive-backend/internal/repos"
  "github.com/kaive-ai/kaive-backend/internal/services"
  "github.com/kaive-ai/kaive-backend/internal/types"
)

type UploadHandler struct {
  pipeline services.UploadPipelineService
  uploads  repos.UploadedFileRepo
}

func NewUploadHandler(pipeline services.UploadPipelineService, uploads repos.UploadedFileRepo) *UploadHandler {
  return &UploadHandler{pipeline: pipeline, uploads: uploads}
}

type uploadPostRequest struct {
  Author        string  `json:"author" binding:"required"`
  PostContent   string  `json:"post_content" binding:"required"`
  PostDate      string  `json:"post_date"`
  PostTimestamp string  `json:"post_timestamp"`
  LikeCount     int     `json:"like_count"`
  CommentCount  int     `json:"comment_count"`
  RepostCount   int     `json:"repost_count"`
  PostURL       *string `json:"post_url"`
  ImgURL        *string `json:"imgurl"`
}

type uploadRequest struct {
  Filename string              `json:"filename" binding:"required"`
  Posts    []uploadPostRequest `json:"posts" binding:"required"`
}

func (uh *UploadHandler) Upload(c *gin.Context) {
  var req uploadRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  if len(req.Posts) == 0 {
    c.JSON(http.StatusBadRequest, gin.H{"error": "no posts in upload"})
    return
  }

  posts := make([]*types.CreatorPost, 0, len(req.Posts))
  for _, p := range req.Posts {
    ts := time.Now().UTC()
    if p.PostTimestamp != "" {
      if parsed, err := time.Parse(time.RFC3339, p.PostTimestamp); err == nil {
        ts = parsed
      }
    }
    posts = append(posts, &types.CreatorPost{
      Author:        p.Author,
      PostContent:   p.PostContent,
      PostDate:      p.PostDate,
      PostTimestamp: ts,
      LikeCount:     p.LikeCount,
      CommentCount:  p.CommentCount,
      RepostCount:   p.RepostCount,
      PostURL:       p.PostURL,
      ImgURL:        p.ImgURL,
    })
  }

  fileID, err := uh.pipeline.Enqueue(c.Request.Context(), req.Filename, posts)
  if err != nil {
    if errors.Is(err, services.ErrQueueFull) {
      c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "file_id": fileID})
      return
    }
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }

  c.JSON(http.StatusAccepted, gin.H{
    "status":   types.UploadStatusProcessing,
    "message":  "Upload accepted. Processing in background.",
    "file_id":  fileID,
    "filename": req.Filename,
  })
}

func (uh *UploadHandler) Status(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload id"})
    return
  }

  records, err := uh.uploads.GetByIDs(c.Request.Context(), nil, []uuid.UUID{id})
  if err != nil {
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }
  if len(records) == 0 {
    c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
    return
  }
  c.JSON(http.StatusOK, records[0])
}
