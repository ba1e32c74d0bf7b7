/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdf-insight-be/config"
	"github.com/tieubaoca/pdf-insight-be/service"
	"github.com/tieubaoca/pdf-insight-be/types"
	"go.uber.org/zap"
)

// processDocumentCmd represents the processDocument command
var processDocumentCmd = &cobra.Command{
	Use:   "process-document",
	Short: "Run the OCR and chunking pipeline on a local PDF",
	Long: `Runs a single PDF through the same pipeline as the server
(OCR, optional LaTeX normalization, semantic chunking) and prints
the resulting chunks as JSON to stdout. Useful for inspecting what
a document will look like before serving it.`,
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		configPath, _ := cmd.Flags().GetString("config")
		skipLatex, _ := cmd.Flags().GetBool("skip-latex")

		if filePath == "" {
			log.Fatal("--file is required")
		}
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		logger, err := zap.NewProduction()
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
		defer logger.Sync()

		ctx := context.Background()
		ocrService := service.NewMistralOCRService(cfg.OCREndpoint, cfg.MistralAPIKey, cfg.OCRModel, logger)
		aiService := buildAIService(cfg)

		ocrResult, err := ocrService.ProcessFile(ctx, filePath)
		if err != nil {
			log.Fatalf("OCR failed: %v", err)
		}
		if !skipLatex {
			service.NewLatexService(aiService, logger).NormalizePages(ctx, ocrResult)
		}

		chunkService := service.NewChunkService(
			aiService,
			cfg.ChunkRateLimit,
			time.Duration(cfg.ChunkRateWindowSeconds)*time.Second,
			logger,
		)
		chunks := chunkService.ProcessOCRResult(ctx, ocrResult)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(types.ChunkList{Chunks: chunks}); err != nil {
			log.Fatalf("Failed to encode chunks: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(processDocumentCmd)

	processDocumentCmd.Flags().StringP("file", "f", "", "Path to the PDF to process")
	processDocumentCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
	processDocumentCmd.Flags().Bool("skip-latex", false, "Skip LaTeX normalization of OCR text")
}
