package services

import "context"

// Embedder converts text into fixed-length vectors within one embedding
// space. Space identifies the provider/model pair; vectors from different
// spaces are never comparable, so the index records the space it was built
// with and retrieval refuses a mismatched embedder.
type Embedder interface {
	Space() string
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Summarizer produces a shortened, meaning-preserving version of the text.
// Best effort: callers must tolerate failure.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Generator produces an answer from a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
