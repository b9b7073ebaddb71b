package services

import (
	"fmt"
	"math"
	"sort"

	"university-faq-assistant/models"
)

// VectorIndex is an immutable in-memory vector index: one embedding vector
// per record, all from the same embedding space. It is built once per
// ingestion run and read-only afterwards, so concurrent searches need no
// locking.
type VectorIndex struct {
	Space     string
	Dimension int
	Records   []models.IndexRecord
	Vectors   [][]float32
}

// NewVectorIndex pairs records with their vectors. Records must already be
// in ingestion order with Ordinal assigned.
func NewVectorIndex(space string, dimension int, records []models.IndexRecord, vectors [][]float32) (*VectorIndex, error) {
	if len(records) != len(vectors) {
		return nil, fmt.Errorf("records and vectors length mismatch: %d vs %d", len(records), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, index dimension is %d", i, len(v), dimension)
		}
	}
	return &VectorIndex{
		Space:     space,
		Dimension: dimension,
		Records:   records,
		Vectors:   vectors,
	}, nil
}

// Size returns the number of records in the index.
func (idx *VectorIndex) Size() int {
	if idx == nil {
		return 0
	}
	return len(idx.Records)
}

// Search returns up to k records ordered by ascending cosine distance to
// the query vector. Ties keep ingestion order: records are stored in that
// order and the sort is stable. An empty index yields an empty result, not
// an error.
func (idx *VectorIndex) Search(query []float32, k int) (models.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be a positive integer, got %d", models.ErrInvalidArgument, k)
	}
	if idx.Size() == 0 {
		return models.RetrievalResult{}, nil
	}
	if len(query) != idx.Dimension {
		return nil, fmt.Errorf("query vector has dimension %d, index dimension is %d", len(query), idx.Dimension)
	}

	results := make(models.RetrievalResult, len(idx.Records))
	for i := range idx.Records {
		results[i] = models.RetrievedRecord{
			Record:   idx.Records[i],
			Distance: 1 - cosineSimilarity(query, idx.Vectors[i]),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// cosineSimilarity returns a value in [-1, 1]; zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
