package services

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"university-faq-assistant/models"
)

func TestChunkTextCoversInputWithOverlap(t *testing.T) {
	cs, err := NewChunkingService(50, 10)
	if err != nil {
		t.Fatalf("NewChunkingService: %v", err)
	}

	text := strings.Repeat("abcdefghij", 13) // 130 chars
	chunks := cs.ChunkText(text, "handbook.pdf", 1)

	if len(chunks) == 0 {
		t.Fatal("expected chunks, got none")
	}

	// Dropping each chunk's leading overlap reconstructs the input exactly.
	var rebuilt strings.Builder
	for i, c := range chunks {
		if i == 0 {
			rebuilt.WriteString(c.Text)
			continue
		}
		rebuilt.WriteString(c.Text[10:])
	}
	if rebuilt.String() != text {
		t.Fatalf("chunks do not cover input: got %d chars, want %d", rebuilt.Len(), len(text))
	}

	// Consecutive chunks share exactly the overlap.
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if !strings.HasSuffix(prev.Text, cur.Text[:10]) {
			t.Errorf("chunk %d does not start with the tail of chunk %d", i, i-1)
		}
	}
}

func TestChunkTextShortInputSingleChunk(t *testing.T) {
	cs, err := NewChunkingService(500, 100)
	if err != nil {
		t.Fatalf("NewChunkingService: %v", err)
	}

	chunks := cs.ChunkText("short text", "faq.pdf", 3)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "short text" {
		t.Errorf("chunk text = %q", chunks[0].Text)
	}
	if chunks[0].Page != 3 || chunks[0].Sequence != 0 {
		t.Errorf("provenance = page %d seq %d, want page 3 seq 0", chunks[0].Page, chunks[0].Sequence)
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	cs, err := NewChunkingService(50, 10)
	if err != nil {
		t.Fatalf("NewChunkingService: %v", err)
	}

	if got := cs.ChunkText("", "faq.pdf", 1); len(got) != 0 {
		t.Errorf("empty input produced %d chunks", len(got))
	}
	if got := cs.ChunkText("   \n\t ", "faq.pdf", 1); len(got) != 0 {
		t.Errorf("whitespace-only input produced %d chunks", len(got))
	}
}

func TestChunkTextRuneBoundaries(t *testing.T) {
	cs, err := NewChunkingService(50, 10)
	if err != nil {
		t.Fatalf("NewChunkingService: %v", err)
	}

	// 130 runes, every one multi-byte: byte-based slicing would cut code
	// points in half.
	text := strings.Repeat("éàüöçñîœßé", 13)
	chunks := cs.ChunkText(text, "intl.pdf", 1)

	var rebuilt strings.Builder
	for i, c := range chunks {
		if !utf8.ValidString(c.Text) {
			t.Fatalf("chunk %d is not valid UTF-8: %q", i, c.Text)
		}
		runes := []rune(c.Text)
		if len(runes) > 50 {
			t.Errorf("chunk %d holds %d runes, budget is 50", i, len(runes))
		}
		if i == 0 {
			rebuilt.WriteString(c.Text)
		} else {
			rebuilt.WriteString(string(runes[10:]))
		}
	}
	if rebuilt.String() != text {
		t.Error("chunks do not cover the accented input")
	}
}

func TestChunkTextDeterministicIDs(t *testing.T) {
	cs, err := NewChunkingService(50, 10)
	if err != nil {
		t.Fatalf("NewChunkingService: %v", err)
	}

	text := strings.Repeat("x", 120)
	first := cs.ChunkText(text, "handbook.pdf", 2)
	second := cs.ChunkText(text, "handbook.pdf", 2)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d id differs: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
	if first[0].ID != "handbook.pdf:2:0" {
		t.Errorf("unexpected id format: %q", first[0].ID)
	}
}

func TestNewChunkingServiceRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 10},
		{"negative chunk size", -5, 10},
		{"zero overlap", 50, 0},
		{"overlap equals chunk size", 50, 50},
		{"overlap exceeds chunk size", 50, 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewChunkingService(tc.chunkSize, tc.overlap)
			if !errors.Is(err, models.ErrInvalidConfiguration) {
				t.Errorf("got %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}
