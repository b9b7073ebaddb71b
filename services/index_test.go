package services

import (
	"errors"
	"testing"

	"university-faq-assistant/models"
)

func makeIndex(t *testing.T, vectors [][]float32) *VectorIndex {
	t.Helper()
	records := make([]models.IndexRecord, len(vectors))
	for i := range records {
		records[i] = models.IndexRecord{
			ID:      string(rune('a'+i)) + ".pdf:1:0",
			Ordinal: i,
		}
	}
	idx, err := NewVectorIndex("test/term-v1", len(vectors[0]), records, vectors)
	if err != nil {
		t.Fatalf("NewVectorIndex: %v", err)
	}
	return idx
}

func TestSearchOrdersByDistance(t *testing.T) {
	idx := makeIndex(t, [][]float32{
		{0, 1},
		{1, 0},
		{1, 1},
	})

	result, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("got %d results, want 3", len(result))
	}

	// Exact match first, diagonal second, orthogonal last.
	if result[0].Record.Ordinal != 1 || result[1].Record.Ordinal != 2 || result[2].Record.Ordinal != 0 {
		t.Errorf("result order = %d, %d, %d", result[0].Record.Ordinal, result[1].Record.Ordinal, result[2].Record.Ordinal)
	}
	for i := 1; i < len(result); i++ {
		if result[i].Distance < result[i-1].Distance {
			t.Errorf("distances not ascending at %d: %v < %v", i, result[i].Distance, result[i-1].Distance)
		}
	}
}

func TestSearchTruncatesToK(t *testing.T) {
	idx := makeIndex(t, [][]float32{{1, 0}, {0, 1}, {1, 1}, {2, 1}})

	result, err := idx.Search([]float32{1, 1}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("got %d results, want 2", len(result))
	}
}

func TestSearchKLargerThanIndex(t *testing.T) {
	idx := makeIndex(t, [][]float32{{1, 0}, {0, 1}})

	result, err := idx.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("got %d results, want all 2", len(result))
	}
}

func TestSearchRejectsNonPositiveK(t *testing.T) {
	idx := makeIndex(t, [][]float32{{1, 0}})

	for _, k := range []int{0, -3} {
		if _, err := idx.Search([]float32{1, 0}, k); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("k=%d: got %v, want ErrInvalidArgument", k, err)
		}
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	idx, err := NewVectorIndex("test/term-v1", 2, nil, nil)
	if err != nil {
		t.Fatalf("NewVectorIndex: %v", err)
	}

	result, err := idx.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("empty index returned %d results", len(result))
	}
}

func TestSearchTieKeepsIngestionOrder(t *testing.T) {
	// Identical vectors tie exactly; stable sort keeps ingestion order.
	idx := makeIndex(t, [][]float32{{1, 1}, {1, 1}, {1, 1}})

	result, err := idx.Search([]float32{1, 1}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i, hit := range result {
		if hit.Record.Ordinal != i {
			t.Errorf("position %d holds ordinal %d", i, hit.Record.Ordinal)
		}
	}
}

func TestSearchZeroVectorScoresWorst(t *testing.T) {
	idx := makeIndex(t, [][]float32{
		{0, 0},
		{1, 1},
	})

	result, err := idx.Search([]float32{1, 1}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result[0].Record.Ordinal != 1 {
		t.Errorf("non-zero vector should rank first, got ordinal %d", result[0].Record.Ordinal)
	}
	if result[1].Distance != 1 {
		t.Errorf("zero vector distance = %v, want 1 (similarity 0)", result[1].Distance)
	}
}

func TestNewVectorIndexValidation(t *testing.T) {
	recs := []models.IndexRecord{{ID: "a.pdf:1:0"}}

	if _, err := NewVectorIndex("s", 2, recs, nil); err == nil {
		t.Error("expected error on record/vector count mismatch")
	}
	if _, err := NewVectorIndex("s", 2, recs, [][]float32{{1, 2, 3}}); err == nil {
		t.Error("expected error on dimension mismatch")
	}
}
