package main

import (
	"context"
	"io"
	"log"
	"time"

	"university-faq-assistant/internal/ai"
	"university-faq-assistant/internal/config"
	"university-faq-assistant/services"
)

// One-shot corpus ingestion: extract, chunk, compress, embed, and publish
// the vector index. Run this whenever the PDFs under PDF_DIR change.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx := context.Background()

	geminiClient, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GenerationModel, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer geminiClient.Close()

	embedder, err := ai.NewEmbedder(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}
	defer func() {
		if closer, ok := embedder.(io.Closer); ok {
			closer.Close()
		}
	}()

	chunker, err := services.NewChunkingService(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatal("Invalid chunking configuration:", err)
	}

	pipeline := services.NewIngestPipeline(
		cfg,
		services.NewPDFExtractor(0),
		chunker,
		services.NewCompressionService(geminiClient, cfg.CompressionEnabled, cfg.CompressionMinChars),
		embedder,
		services.NewIndexStore(cfg.IndexDir),
		nil,
	)

	log.Printf("Ingesting PDFs from %s", cfg.PDFDir)
	stats, err := pipeline.Run(ctx)
	if err != nil {
		log.Fatal("Ingestion failed:", err)
	}

	log.Printf("Ingestion complete: %d documents, %d pages, %d chunks (%d compression fallbacks, avg ratio %.2f) in %s",
		stats.Documents, stats.Pages, stats.Chunks, stats.Fallbacks, stats.AvgRatio, stats.Duration.Round(10*time.Millisecond))
}
