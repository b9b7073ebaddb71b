package ai

import (
	"context"
	"fmt"

	"university-faq-assistant/internal/config"
	"university-faq-assistant/services"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// NewEmbedder returns the configured embedding provider. Default is
// Google Generative AI (text-embedding-004).
func NewEmbedder(ctx context.Context, cfg *config.Config) (services.Embedder, error) {
	switch cfg.EmbeddingsProvider {
	case "google", "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
		}
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			return nil, err
		}
		return &GoogleEmbedder{client: client, model: cfg.GoogleEmbeddingsModel}, nil

	case "openai":
		// Optional: implement OpenAI embeddings if needed
		return nil, fmt.Errorf("openai embeddings not implemented")

	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.EmbeddingsProvider)
	}
}

// GoogleEmbedder embeds text with a Gemini embedding model. One embedder
// instance embeds within exactly one space; an index built with a
// different provider or model must be rebuilt, not queried.
type GoogleEmbedder struct {
	client *genai.Client
	model  string
}

// Space identifies the embedding space this embedder produces vectors in.
func (e *GoogleEmbedder) Space() string {
	return "google/" + e.model
}

// EmbedTexts embeds a batch of texts in one API call.
func (e *GoogleEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("no embedding returned for text %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (e *GoogleEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Embedding.Values, nil
}

// Close releases the underlying API client.
func (e *GoogleEmbedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
