package services

import (
	"fmt"

	"university-faq-assistant/models"
)

// BuildRecord pairs a chunk's compressed text (embedding side) with its
// original text and provenance (generation side). Pure pairing: a
// compressed chunk that does not derive from the given chunk is a
// programming error and panics; it is never recovered.
func BuildRecord(chunk models.Chunk, compressed models.CompressedChunk) models.IndexRecord {
	if compressed.ChunkID != chunk.ID || compressed.SourceID != chunk.SourceID {
		panic(fmt.Sprintf("record builder: compressed chunk %q does not derive from chunk %q", compressed.ChunkID, chunk.ID))
	}

	return models.IndexRecord{
		ID:             chunk.ID,
		SourceID:       chunk.SourceID,
		Page:           chunk.Page,
		Sequence:       chunk.Sequence,
		OriginalText:   chunk.Text,
		CompressedText: compressed.CompressedText,
		Ratio:          compressed.Ratio,
		Fallback:       compressed.Fallback,
	}
}
