/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdf-insight-be/config"
	"github.com/tieubaoca/pdf-insight-be/database"
	"github.com/tieubaoca/pdf-insight-be/handler"
	"github.com/tieubaoca/pdf-insight-be/repository"
	"github.com/tieubaoca/pdf-insight-be/service"
	"go.uber.org/zap"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the PDF processing server",
	Long:  `Starts a server that accepts PDF uploads, runs OCR and chunking, and serves job results over HTTP`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		logger, err := zap.NewProduction()
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
		defer logger.Sync()

		// Initialize services
		ocrService := service.NewMistralOCRService(cfg.OCREndpoint, cfg.MistralAPIKey, cfg.OCRModel, logger)
		aiService := buildAIService(cfg)
		latexService := service.NewLatexService(aiService, logger)
		chunkService := service.NewChunkService(
			aiService,
			cfg.ChunkRateLimit,
			time.Duration(cfg.ChunkRateWindowSeconds)*time.Second,
			logger,
		)

		// Job records live in memory unless MongoDB is configured.
		var jobStore database.JobStore = database.NewMemoryJobStore()
		if cfg.MongoURI != "" {
			mongoClient, err := database.NewMongoClient(cfg.MongoURI)
			if err != nil {
				log.Fatalf("Failed to create MongoDB client: %v", err)
			}
			if err := mongoClient.Ping(context.Background(), nil); err != nil {
				log.Fatalf("Failed to connect to MongoDB: %v", err)
			}
			jobStore = repository.NewJobRepo(mongoClient.Database("pdf_insight"))
		}

		// Vector search is optional, the pipeline runs without it.
		var chunkIndex database.ChunkIndexer
		if cfg.WeaviateStoreConfig.Host != "" {
			weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
			if err != nil {
				log.Fatalf("Failed to connect to Weaviate database: %v", err)
			}
			chunkIndex = weaviateDb
		}

		jobService := service.NewJobService(jobStore, ocrService, latexService, chunkService, chunkIndex, logger)
		wsService := service.NewWebSocketService(aiService, jobService, logger)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		processHandler := handler.NewProcessHandler(jobService, cfg.UploadDir)
		statusHandler := handler.NewStatusHandler(jobService)
		chatHandler := handler.NewChatHandler(jobService, aiService)
		searchHandler := handler.NewSearchHandler(chunkIndex)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		router.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "PDF OCR & Analysis API is running"})
		})
		router.POST("/process", processHandler.HandleProcess)
		router.GET("/status/:job_id", statusHandler.HandleStatus)
		router.POST("/chat", chatHandler.HandleChat)
		router.POST("/search", searchHandler.HandleSearch)
		router.GET("/ws/chat", gin.WrapF(wsService.HandleChat))

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func buildAIService(cfg *config.Config) service.AIService {
	if cfg.AIProvider == "openai" {
		return service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model)
	}
	return service.NewGeminiService(cfg.GeminiAPIKey, cfg.Model)
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
