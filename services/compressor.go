package services

import (
	"context"
	"strings"

	"university-faq-assistant/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// CompressionService shortens chunk text before embedding via a
// summarization capability. Compression is an optimization, never a
// correctness requirement: every failure falls back to the identity
// transform and no chunk is ever dropped.
type CompressionService struct {
	summarizer Summarizer
	enabled    bool
	minChars   int
}

// NewCompressionService creates a compression service. Texts shorter than
// minChars skip the capability call entirely; summarizing them costs more
// than it saves.
func NewCompressionService(summarizer Summarizer, enabled bool, minChars int) *CompressionService {
	return &CompressionService{
		summarizer: summarizer,
		enabled:    enabled,
		minChars:   minChars,
	}
}

// Compress returns the compressed form of one chunk. On any capability
// failure (error, empty output, output longer than the input) it returns
// the identity transform with Fallback set, so the fallback rate stays
// observable. This path never returns an error.
func (cs *CompressionService) Compress(ctx context.Context, chunk models.Chunk) models.CompressedChunk {
	identity := models.CompressedChunk{
		ChunkID:        chunk.ID,
		SourceID:       chunk.SourceID,
		CompressedText: chunk.Text,
		Ratio:          1.0,
	}

	if !cs.enabled || len(chunk.Text) < cs.minChars {
		return identity
	}

	tracer := otel.Tracer("compression-service")
	ctx, span := tracer.Start(ctx, "compress.chunk")
	defer span.End()
	span.SetAttributes(attribute.String("chunk.id", chunk.ID))

	summary, err := cs.summarizer.Summarize(ctx, chunk.Text)
	summary = strings.TrimSpace(summary)
	if err != nil || summary == "" || len(summary) > len(chunk.Text) {
		span.SetAttributes(attribute.Bool("compress.fallback", true))
		identity.Fallback = true
		return identity
	}

	span.SetAttributes(attribute.Float64("compress.ratio", float64(len(summary))/float64(len(chunk.Text))))

	return models.CompressedChunk{
		ChunkID:        chunk.ID,
		SourceID:       chunk.SourceID,
		CompressedText: summary,
		Ratio:          float64(len(summary)) / float64(len(chunk.Text)),
	}
}
