package models

// Chunk is a bounded contiguous span of one document's text, tagged with
// its provenance. Chunks are immutable once created.
type Chunk struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	SourceID string `json:"source_id"`
	Page     int    `json:"page,omitempty"`
	Sequence int    `json:"sequence"`
}

// CompressedChunk is the summarized form of exactly one Chunk. Ratio is
// len(compressed)/len(original). Fallback is set when the summarization
// capability failed and the original text was kept verbatim.
type CompressedChunk struct {
	ChunkID        string  `json:"chunk_id"`
	SourceID       string  `json:"source_id"`
	CompressedText string  `json:"compressed_text"`
	Ratio          float64 `json:"ratio"`
	Fallback       bool    `json:"fallback"`
}

// IndexRecord is the atomic unit stored in and retrieved from the vector
// index. The embedding vector is computed only from CompressedText;
// OriginalText and provenance ride along as payload and are returned
// unmodified on retrieval. Ordinal is the record's position in the build,
// used to break distance ties deterministically.
type IndexRecord struct {
	ID             string  `json:"id"`
	SourceID       string  `json:"source_id"`
	Page           int     `json:"page,omitempty"`
	Sequence       int     `json:"sequence"`
	OriginalText   string  `json:"original_text"`
	CompressedText string  `json:"compressed_text"`
	Ratio          float64 `json:"ratio"`
	Fallback       bool    `json:"fallback"`
	Ordinal        int     `json:"ordinal"`
}

// RetrievedRecord pairs an IndexRecord with its distance to the query
// vector. Smaller distance means more similar.
type RetrievedRecord struct {
	Record   IndexRecord
	Distance float64
}

// RetrievalResult is ordered by ascending distance, ties broken by
// ingestion order. Its length never exceeds the requested k.
type RetrievalResult []RetrievedRecord

// Source identifies where an answer's supporting text came from.
type Source struct {
	SourceID string `json:"source_id"`
	Page     int    `json:"page"`
}

// Answer is the synthesized response to one question. Unavailable is set
// when the corpus contained no usable context, or the model declined to
// answer from it.
type Answer struct {
	Text        string   `json:"answer"`
	Sources     []Source `json:"sources"`
	Unavailable bool     `json:"unavailable"`
}
