package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"university-faq-assistant/internal/config"
	"university-faq-assistant/internal/telemetry"
	"university-faq-assistant/models"
	"university-faq-assistant/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Document is one corpus document's extracted text, page by page.
type Document struct {
	SourceID string
	Pages    []PageText
}

// IngestStats summarizes one completed ingestion run.
type IngestStats struct {
	Documents int
	Pages     int
	Chunks    int
	Fallbacks int
	AvgRatio  float64
	Duration  time.Duration
}

// IngestPipeline rebuilds the vector index from the PDF corpus:
// extract -> clean -> chunk -> compress -> embed -> publish. The run is
// all-or-nothing; on any embedding failure the previously published index
// stays in place untouched.
type IngestPipeline struct {
	cfg        *config.Config
	extractor  *PDFExtractor
	chunker    *ChunkingService
	compressor *CompressionService
	embedder   Embedder
	store      *IndexStore
	metrics    *telemetry.Metrics

	// Ingestion is single-writer; concurrent runs queue up here.
	mu sync.Mutex
}

func NewIngestPipeline(
	cfg *config.Config,
	extractor *PDFExtractor,
	chunker *ChunkingService,
	compressor *CompressionService,
	embedder Embedder,
	store *IndexStore,
	metrics *telemetry.Metrics,
) *IngestPipeline {
	return &IngestPipeline{
		cfg:        cfg,
		extractor:  extractor,
		chunker:    chunker,
		compressor: compressor,
		embedder:   embedder,
		store:      store,
		metrics:    metrics,
	}
}

// Run ingests every PDF in the configured corpus directory.
func (p *IngestPipeline) Run(ctx context.Context) (*IngestStats, error) {
	pdfFiles, err := filepath.Glob(filepath.Join(p.cfg.PDFDir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus dir: %w", err)
	}
	if len(pdfFiles) == 0 {
		return nil, fmt.Errorf("no PDF files found in %s", p.cfg.PDFDir)
	}

	var docs []Document
	for _, path := range pdfFiles {
		pages, err := p.extractor.ExtractPages(path)
		if err != nil {
			// A single unreadable document does not abort the run.
			log.Printf("Skipping %s: %v", path, err)
			continue
		}
		docs = append(docs, Document{SourceID: filepath.Base(path), Pages: pages})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents could be loaded from %s", p.cfg.PDFDir)
	}

	return p.BuildFromDocuments(ctx, docs)
}

// BuildFromDocuments runs the pipeline over already-extracted documents
// and atomically publishes the resulting index.
func (p *IngestPipeline) BuildFromDocuments(ctx context.Context, docs []Document) (*IngestStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracer := otel.Tracer("ingest-pipeline")
	ctx, span := tracer.Start(ctx, "ingest.run")
	defer span.End()

	start := time.Now()

	var chunks []models.Chunk
	pages := 0
	for _, doc := range docs {
		for _, page := range doc.Pages {
			pages++
			cleaned := utils.CleanText(page.Text)
			chunks = append(chunks, p.chunker.ChunkText(cleaned, doc.SourceID, page.Number)...)
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("corpus produced no chunks")
	}
	span.SetAttributes(
		attribute.Int("ingest.documents", len(docs)),
		attribute.Int("ingest.chunks", len(chunks)),
	)

	compressed := p.compressChunks(ctx, chunks)

	records := make([]models.IndexRecord, len(chunks))
	texts := make([]string, len(chunks))
	fallbacks := 0
	ratioSum := 0.0
	for i := range chunks {
		records[i] = BuildRecord(chunks[i], compressed[i])
		records[i].Ordinal = i
		texts[i] = records[i].CompressedText
		if records[i].Fallback {
			fallbacks++
		}
		ratioSum += records[i].Ratio
	}

	vectors, err := p.embedAll(ctx, texts)
	if err != nil {
		span.SetAttributes(attribute.Bool("ingest.aborted", true))
		if p.metrics != nil {
			p.metrics.RecordIngestRun(time.Since(start).Seconds(), "aborted")
		}
		return nil, err
	}

	idx, err := NewVectorIndex(p.embedder.Space(), len(vectors[0]), records, vectors)
	if err != nil {
		return nil, err
	}
	if err := p.store.Save(idx); err != nil {
		return nil, fmt.Errorf("failed to publish index: %w", err)
	}

	stats := &IngestStats{
		Documents: len(docs),
		Pages:     pages,
		Chunks:    len(chunks),
		Fallbacks: fallbacks,
		AvgRatio:  ratioSum / float64(len(chunks)),
		Duration:  time.Since(start),
	}
	if p.metrics != nil {
		p.metrics.RecordCompressionFallbacks(int64(fallbacks))
		p.metrics.RecordIngestRun(stats.Duration.Seconds(), "published")
	}
	log.Printf("Ingestion complete: %d documents, %d chunks, %d fallbacks, avg ratio %.2f, took %s",
		stats.Documents, stats.Chunks, stats.Fallbacks, stats.AvgRatio, stats.Duration)

	return stats, nil
}

// compressChunks compresses chunks across a bounded worker pool. Each
// chunk's compression is isolated: a failure only affects that chunk's
// fallback flag, never a sibling.
func (p *IngestPipeline) compressChunks(ctx context.Context, chunks []models.Chunk) []models.CompressedChunk {
	workers := p.cfg.IngestWorkers
	if workers <= 0 {
		workers = 1
	}

	results := make([]models.CompressedChunk, len(chunks))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.compressor.Compress(ctx, chunks[i])
			}
		}()
	}

	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// embedAll embeds all compressed texts in batches, retrying each batch
// with bounded exponential backoff. Exhausting the attempts aborts the
// whole run so no partial index is ever persisted.
func (p *IngestPipeline) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	batchSize := p.cfg.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	maxAttempts := p.cfg.EmbedMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		var batchVecs [][]float32
		var err error
		for attempt := 0; attempt < maxAttempts; attempt++ {
			batchVecs, err = p.embedder.EmbedTexts(ctx, batch)
			if err == nil {
				break
			}
			if attempt < maxAttempts-1 {
				time.Sleep(time.Duration(1<<attempt) * time.Second)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d failed after %d attempts: %v",
				models.ErrEmbeddingUnavailable, i/batchSize, maxAttempts, err)
		}
		if len(batchVecs) != len(batch) {
			return nil, fmt.Errorf("%w: batch %d returned %d vectors for %d texts",
				models.ErrEmbeddingUnavailable, i/batchSize, len(batchVecs), len(batch))
		}
		vectors = append(vectors, batchVecs...)
	}

	return vectors, nil
}
