package main

import (
	"context"
	"io"
	"log"
	"time"

	"university-faq-assistant/internal/ai"
	"university-faq-assistant/internal/config"
	"university-faq-assistant/internal/queue"
	"university-faq-assistant/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx := context.Background()

	// Initialize Gemini client (used for summarization compression)
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

	// Redis options for Asynq
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Create Asynq server. Ingestion is single-writer so one concurrent
	// task slot per queue is enough.
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("Task failed: %s, error: %v", task.Type(), err)
			}),
		},
	)

	// Create task processor
	processor := queue.NewTaskProcessor(pipeline)

	// Create mux and register handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestCorpus, processor.HandleIngest)

	// Optional scheduled reindexing
	if cfg.ReindexMinutes > 0 {
		scheduler := services.NewReindexScheduler(pipeline)
		if err := scheduler.ScheduleEvery(time.Duration(cfg.ReindexMinutes) * time.Minute); err != nil {
			log.Fatal("Failed to schedule reindexing:", err)
		}
		defer scheduler.Stop()
		log.Printf("Scheduled reindexing every %d minutes", cfg.ReindexMinutes)
	}

	log.Println("🚀 Starting Asynq worker...")
	log.Printf("   Queues: critical(6), default(3), low(1)")
	log.Printf("   Redis: %s", redisOpt.Addr)

	// Start the server
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
