package main

import (
  "context"
  "fmt"
  "os"

  "github.com/joho/godotenv"

  "github.com/kaive-ai/kaive-backend/internal/db"
  "github.com/kaive-ai/kaive-backend/internal/handlers"
  "github.com/kaive-ai/kaive-backend/internal/logger"
  "github.com/kaive-ai/kaive-backend/internal/repos"
  "github.com/kaive-ai/kaive-backend/internal/server"
  "github.com/kaive-ai/kaive-backend/internal/services"
  "github.com/kaive-ai/kaive-backend/internal/utils"
  "github.com/kaive-ai/kaive-backend/internal/voice"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  if err := godotenv.Load(); err != nil {
    log.Info("No .env file found, relying on process environment")
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  creatorPostRepo := repos.NewCreatorPostRepo(thePG, log)
  voiceProfileRepo := repos.NewVoiceProfileRepo(thePG, log)
  uploadedFileRepo := repos.NewUploadedFileRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  openaiClient, err := services.NewOpenAIClient(log)
  if err != nil {
    log.Error("Could not init OpenAIClient", "error", err)
    os.Exit(1)
  }
  parseCache, err := voice.NewParseCache(utils.GetEnvAsInt("EMBEDDING_CACHE_SIZE", 1000, log))
  if err != nil {
    log.Error("Could not init embedding parse cache", "error", err)
    os.Exit(1)
  }
  embeddingService := services.NewEmbeddingService(log, openaiClient)
  voiceProfileService := services.NewVoiceProfileService(log, creatorPostRepo, voiceProfileRepo, openaiClient, parseCache)
  uploadPipeline := services.NewUploadPipelineService(
    log,
    creatorPostRepo,
    voiceProfileRepo,
    uploadedFileRepo,
    embeddingService,
    voiceProfileService,
    parseCache,
  )
  uploadPipeline.StartWorkers(context.Background())

  // Handlers
  log.Info("Setting up handlers from main...")
  uploadHandler := handlers.NewUploadHandler(uploadPipeline, uploadedFileRepo)
  clusterHandler := handlers.NewClusterHandler(log, uploadPipeline, creatorPostRepo)
  statsHandler := handlers.NewStatsHandler(creatorPostRepo, uploadedFileRepo)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    UploadHandler:  uploadHandler,
    ClusterHandler: clusterHandler,
    StatsHandler:   statsHandler,
  })

  port := utils.GetEnv("PORT", "8000", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
