package services

import (
	"fmt"
	"strings"

	"university-faq-assistant/models"
)

// ChunkingService splits document text into fixed-size overlapping chunks.
type ChunkingService struct {
	chunkSize int
	overlap   int
}

// NewChunkingService validates the chunking parameters once, at startup.
func NewChunkingService(chunkSize, overlap int) (*ChunkingService, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrInvalidConfiguration, chunkSize)
	}
	if overlap <= 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap must satisfy 0 < overlap < chunk size, got %d (chunk size %d)",
			models.ErrInvalidConfiguration, overlap, chunkSize)
	}
	return &ChunkingService{
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// ChunkText splits text into chunks of at most chunkSize characters where
// each consecutive pair shares exactly overlap characters (fewer only at
// the tail). Sizes count runes, not bytes, so a boundary never splits a
// multi-byte code point. The chunks cover the whole input with no gaps.
// Chunk ids are deterministic so rebuilding an unchanged corpus yields the
// same record set.
func (cs *ChunkingService) ChunkText(text, sourceID string, page int) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	step := cs.chunkSize - cs.overlap
	var chunks []models.Chunk

	for start, seq := 0, 0; start < len(runes); start, seq = start+step, seq+1 {
		end := start + cs.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, models.Chunk{
			ID:       chunkID(sourceID, page, seq),
			Text:     string(runes[start:end]),
			SourceID: sourceID,
			Page:     page,
			Sequence: seq,
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}

func chunkID(sourceID string, page, sequence int) string {
	return fmt.Sprintf("%s:%d:%d", sourceID, page, sequence)
}
