package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"university-faq-assistant/internal/telemetry"
	"university-faq-assistant/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Retriever embeds a query and runs top-K similarity search against the
// currently published index. The loaded index is immutable and swapped
// through an atomic pointer, so any number of retrievals can run
// concurrently with a background reindex.
type Retriever struct {
	embedder Embedder
	store    *IndexStore
	metrics  *telemetry.Metrics

	current       atomic.Pointer[VectorIndex]
	loadedVersion atomic.Int64
	reloadMu      sync.Mutex
}

// NewRetriever loads the published index if one exists. Starting without
// an index is fine; retrievals return empty results until ingestion runs.
func NewRetriever(embedder Embedder, store *IndexStore, metrics *telemetry.Metrics) (*Retriever, error) {
	r := &Retriever{
		embedder: embedder,
		store:    store,
		metrics:  metrics,
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload swaps in the published index. Readers keep using the old index
// until the swap completes; in-flight searches are never affected.
func (r *Retriever) Reload() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	version := r.store.Version()
	idx, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}
	r.current.Store(idx)
	r.loadedVersion.Store(version)
	return nil
}

// refresh picks up a newly published index. Cheap when nothing changed.
func (r *Retriever) refresh() {
	if r.store.Version() == r.loadedVersion.Load() {
		return
	}
	if err := r.Reload(); err != nil {
		// Keep serving the old index rather than failing queries.
		log.Printf("Warning: index reload failed: %v", err)
	}
}

// Retrieve returns up to k records most similar to queryText, most similar
// first. An empty or absent index yields an empty result, never an error.
// An index built in a different embedding space is refused outright:
// distances across spaces are meaningless.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, k int) (models.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be a positive integer, got %d", models.ErrInvalidArgument, k)
	}

	tracer := otel.Tracer("retriever")
	ctx, span := tracer.Start(ctx, "retrieve.top_k")
	defer span.End()
	span.SetAttributes(attribute.Int("retrieve.k", k))

	r.refresh()
	idx := r.current.Load()
	if idx.Size() == 0 {
		span.SetAttributes(attribute.Int("retrieve.hits", 0))
		return models.RetrievalResult{}, nil
	}

	if idx.Space != r.embedder.Space() {
		return nil, fmt.Errorf("embedding space mismatch: index built with %q, active embedder is %q; rebuild the index",
			idx.Space, r.embedder.Space())
	}

	start := time.Now()
	vector, err := r.embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	result, err := idx.Search(vector, k)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("retrieve.hits", len(result)))
	if r.metrics != nil {
		r.metrics.RecordRetrieval(time.Since(start).Seconds(), len(result))
	}
	return result, nil
}

// IndexStats describes the currently served index.
type IndexStats struct {
	TotalChunks        int    `json:"total_chunks"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	EmbeddingSpace     string `json:"embedding_space,omitempty"`
	Fallbacks          int    `json:"compression_fallbacks"`
	Ready              bool   `json:"ready"`
}

// Stats reports on the index currently being served.
func (r *Retriever) Stats() IndexStats {
	r.refresh()
	idx := r.current.Load()
	if idx.Size() == 0 {
		return IndexStats{}
	}

	fallbacks := 0
	for i := range idx.Records {
		if idx.Records[i].Fallback {
			fallbacks++
		}
	}
	return IndexStats{
		TotalChunks:        idx.Size(),
		EmbeddingDimension: idx.Dimension,
		EmbeddingSpace:     idx.Space,
		Fallbacks:          fallbacks,
		Ready:              true,
	}
}
