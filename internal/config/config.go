package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"university-faq-assistant/models"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Gemini / capability providers
	GeminiAPIKey          string
	GeminiTier            string
	GenerationModel       string
	EmbeddingsProvider    string // "google" (default), "openai"
	GoogleEmbeddingsModel string // e.g., "text-embedding-004"

	// Corpus and index locations
	PDFDir   string
	IndexDir string

	// Document processing
	ChunkSize           int
	ChunkOverlap        int
	CompressionEnabled  bool
	CompressionMinChars int

	// Retrieval and synthesis
	TopK              int
	ChunkCharCap      int
	ContextCharBudget int
	QueryTimeoutSecs  int

	// Ingestion
	IngestWorkers    int
	EmbedBatchSize   int
	EmbedMaxAttempts int
	ReindexMinutes   int // 0 disables scheduled reindexing

	// Redis (asynq transport and rate limiting)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow int

	// Telemetry
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiTier:            getEnv("GEMINI_TIER", "free"),
		GenerationModel:       getEnv("GENERATION_MODEL", "gemini-2.0-flash"),
		EmbeddingsProvider:    getEnv("EMBEDDINGS_PROVIDER", "google"),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),

		PDFDir:   getEnv("PDF_DIR", "./data/pdfs"),
		IndexDir: getEnv("INDEX_DIR", "./data/vector_index"),

		ChunkSize:           getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:        getEnvInt("CHUNK_OVERLAP", 100),
		CompressionEnabled:  getEnvBool("COMPRESSION_ENABLED", false),
		CompressionMinChars: getEnvInt("COMPRESSION_MIN_CHARS", 200),

		TopK:              getEnvInt("TOP_K_RETRIEVAL", 2),
		ChunkCharCap:      getEnvInt("CONTEXT_CHUNK_CAP", 400),
		ContextCharBudget: getEnvInt("CONTEXT_CHAR_BUDGET", 1500),
		QueryTimeoutSecs:  getEnvInt("QUERY_TIMEOUT_SECS", 30),

		IngestWorkers:    getEnvInt("INGEST_WORKERS", 4),
		EmbedBatchSize:   getEnvInt("EMBED_BATCH_SIZE", 32),
		EmbedMaxAttempts: getEnvInt("EMBED_MAX_ATTEMPTS", 3),
		ReindexMinutes:   getEnvInt("REINDEX_MINUTES", 0),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive, got %d", models.ErrInvalidConfiguration, cfg.ChunkSize)
	}
	if cfg.ChunkOverlap <= 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must satisfy 0 < overlap < chunk size, got %d (chunk size %d)",
			models.ErrInvalidConfiguration, cfg.ChunkOverlap, cfg.ChunkSize)
	}
	if cfg.TopK <= 0 {
		return fmt.Errorf("%w: TOP_K_RETRIEVAL must be positive, got %d", models.ErrInvalidConfiguration, cfg.TopK)
	}
	if cfg.ContextCharBudget <= 0 {
		return fmt.Errorf("%w: CONTEXT_CHAR_BUDGET must be positive, got %d", models.ErrInvalidConfiguration, cfg.ContextCharBudget)
	}
	if cfg.EmbedMaxAttempts <= 0 {
		return fmt.Errorf("%w: EMBED_MAX_ATTEMPTS must be positive, got %d", models.ErrInvalidConfiguration, cfg.EmbedMaxAttempts)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
