package services

import (
	"context"
	"errors"
	"strings"

	"university-faq-assistant/internal/config"
)

// termEmbedder is a deterministic embedder for tests: each vector component
// counts occurrences of one term in the lowercased text. Similar texts share
// terms and land close together, which is all cosine search needs.
type termEmbedder struct {
	terms []string
	space string

	embedErr   error
	queryCalls int
	textCalls  int
}

func newTermEmbedder(terms ...string) *termEmbedder {
	return &termEmbedder{terms: terms, space: "test/term-v1"}
}

func (e *termEmbedder) Space() string { return e.space }

func (e *termEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	e.textCalls++
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vectorFor(text)
	}
	return vectors, nil
}

func (e *termEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.queryCalls++
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	return e.vectorFor(text), nil
}

func (e *termEmbedder) vectorFor(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(e.terms))
	for i, term := range e.terms {
		vec[i] = float32(strings.Count(lower, term))
	}
	return vec
}

// fakeSummarizer delegates to a function so each test shapes its own
// behavior, and counts invocations.
type fakeSummarizer struct {
	fn    func(text string) (string, error)
	calls int
}

func (s *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	s.calls++
	if s.fn == nil {
		return "", errors.New("no summarizer behavior configured")
	}
	return s.fn(text)
}

// fakeGenerator records prompts and returns a canned answer.
type fakeGenerator struct {
	answer  string
	err     error
	calls   int
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

// testConfig returns a pipeline config with small, test-friendly sizes.
func testConfig(pdfDir, indexDir string) *config.Config {
	return &config.Config{
		PDFDir:              pdfDir,
		IndexDir:            indexDir,
		ChunkSize:           50,
		ChunkOverlap:        10,
		CompressionEnabled:  false,
		CompressionMinChars: 200,
		TopK:                2,
		ChunkCharCap:        400,
		ContextCharBudget:   1500,
		IngestWorkers:       2,
		EmbedBatchSize:      8,
		EmbedMaxAttempts:    1,
	}
}
