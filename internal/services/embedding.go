package services

import (
  "context"
  "time"

  "github.com/kaive-ai/kaive-backend/internal/logger"
  "github.com/kaive-ai/kaive-backend/internal/utils"
)

type EmbeddingService interface {
  // EmbedBatch returns one vector per input text, aligned by index. A batch
  // that fails after retries yields nil vectors for its inputs; the rest of
  // the inputs still get embedded.
  EmbedBatch(ctx context.Context, texts []string) [][]float32
}

type embeddingService struct {
  log       *logger.Logger
  client    OpenAIClient
  batchSize int
  timeout   time.Duration
}

func NewEmbeddingService(log *logger.Logger, client OpenAIClient) EmbeddingService {
  batchSize := utils.GetEnvAsInt("EMBED_BATCH_SIZE", 50, log)
  if batchSize <= 0 {
    batchSize = 50
  }
  timeoutSec := utils.GetEnvAsInt("EMBED_BATCH_TIMEOUT_SECONDS", 60, log)
  if timeoutSec <= 0 {
    timeoutSec = 60
  }
  return &embeddingService{
    log:       log.With("service", "EmbeddingService"),
    client:    client,
    batchSize: batchSize,
    timeout:   time.Duration(timeoutSec) * time.Second,
  }
}

func (s *embeddingService) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
  out := make([][]float32, len(texts))
  if len(texts) == 0 {
    return out
  }

  for start := 0; start < len(texts); start += s.batchSize {
    end := start + s.batchSize
    if end > len(texts) {
      end = len(texts)
    }

    batchCtx, cancel := context.WithTimeout(ctx, s.timeout)
    vectors, err := s.client.Embed(batchCtx, texts[start:end])
    cancel()

    if err != nil {
      s.log.Warn("Embedding batch failed; posts in batch will have no embedding",
        "batch_start", start,
        "batch_size", end-start,
        "error", err,
      )
      continue
    }

    for i, v := range vectors {
      out[start+i] = v
    }
  }

  return out
}
