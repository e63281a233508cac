package main

import (
	"fmt"
	"log"

	"tiku/internal/config"
	"tiku/internal/exam"
	"tiku/internal/handler"
	"tiku/internal/llm/deepseek"
	"tiku/internal/ocr"
	"tiku/internal/repository/postgres"
	"tiku/internal/router"
	"tiku/internal/service"
	s3storage "tiku/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	questionRepo := postgres.NewQuestionRepo(db)
	tagRepo := postgres.NewTagRepo(db)
	exportRepo := postgres.NewExportRepo(db)

	// Initialize storage and external clients
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	ocrClient := ocr.NewClient(&cfg.OCR)
	llmClient := deepseek.NewClient(&cfg.LLM)

	// Initialize the segmentation engine
	segmenter := exam.NewSegmenter(llmClient, &cfg.LLM)
	annotator := exam.NewAnnotator(llmClient, &cfg.LLM)
	materializer := service.NewMaterializer(s3Client, &cfg.S3)

	// Initialize services
	tagSvc := service.NewTagService(tagRepo, &cfg.Tags)
	questionSvc := service.NewQuestionService(questionRepo, tagSvc, s3Client, &cfg.S3)
	annotateSvc := service.NewAnnotateService(annotator, tagSvc)
	ingestSvc := service.NewIngestService(ocrClient, materializer, segmenter, questionRepo, tagSvc, &cfg.S3)
	exportSvc := service.NewExportService(questionRepo, exportRepo, &cfg.Export)

	// Initialize handlers
	questionH := handler.NewQuestionHandler(questionSvc, annotateSvc)
	paperH := handler.NewPaperHandler(ingestSvc)
	tagH := handler.NewTagHandler(tagSvc)
	exportH := handler.NewExportHandler(exportSvc)
	imageH := handler.NewImageHandler(s3Client, &cfg.S3)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, questionH, paperH, tagH, exportH, imageH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
