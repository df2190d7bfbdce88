package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "github.com/kaive-ai/kaive-backend/internal/handlers"
)

type RouterConfig struct {
  UploadHandler  *handlers.UploadHandler
  ClusterHandler *handlers.ClusterHandler
  StatsHandler   *handlers.StatsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:3000",
      "https://kaive.xyz",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthcheck", handlers.HealthCheck)

  api := router.Group("/api")
  {
    api.POST("/upload", cfg.UploadHandler.Upload)
    api.GET("/uploads/:id", cfg.UploadHandler.Status)
    api.POST("/cluster/:creator", cfg.ClusterHandler.Cluster)
    api.GET("/stats", cfg.StatsHandler.Stats)
  }

  return router
}
