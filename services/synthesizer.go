package services

import (
	"context"
	"fmt"
	"strings"

	"university-faq-assistant/models"
	"university-faq-assistant/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// UnavailableAnswer is the fixed response when the corpus holds no usable
// context for a question.
const UnavailableAnswer = "I don't have that information in the provided documents. Please contact the university office for assistance."

// Synthesizer assembles retrieved original texts into a bounded context
// window and asks the generation capability to answer strictly from it.
type Synthesizer struct {
	generator     Generator
	chunkCharCap  int
	contextBudget int
}

func NewSynthesizer(generator Generator, chunkCharCap, contextBudget int) *Synthesizer {
	return &Synthesizer{
		generator:     generator,
		chunkCharCap:  chunkCharCap,
		contextBudget: contextBudget,
	}
}

// Synthesize answers questionText from the retrieved records. With no
// usable context it returns the fixed unavailability answer without
// invoking the generation capability at all. Generation failure surfaces
// as ErrGenerationUnavailable; nothing is fabricated in its place.
func (s *Synthesizer) Synthesize(ctx context.Context, questionText string, result models.RetrievalResult) (*models.Answer, error) {
	tracer := otel.Tracer("synthesizer")
	ctx, span := tracer.Start(ctx, "synthesize.answer")
	defer span.End()

	contextText, sources := s.buildContext(result)
	span.SetAttributes(
		attribute.Int("synthesize.context_chars", len(contextText)),
		attribute.Int("synthesize.sources", len(sources)),
	)

	if contextText == "" {
		span.SetAttributes(attribute.Bool("synthesize.unavailable", true))
		return &models.Answer{
			Text:        UnavailableAnswer,
			Sources:     []models.Source{},
			Unavailable: true,
		}, nil
	}

	answerText, err := s.generator.Generate(ctx, buildAnswerPrompt(contextText, questionText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationUnavailable, err)
	}

	answerText = strings.TrimSpace(answerText)
	if answerText == "" || isRefusal(answerText) {
		// The model could not find the answer in context; say so instead
		// of inventing one.
		return &models.Answer{
			Text:        UnavailableAnswer,
			Sources:     sources,
			Unavailable: true,
		}, nil
	}

	return &models.Answer{
		Text:    answerText,
		Sources: sources,
	}, nil
}

// buildContext concatenates distinct original texts in retrieval order,
// deduplicated by source and page, capped per chunk and bounded overall.
func (s *Synthesizer) buildContext(result models.RetrievalResult) (string, []models.Source) {
	var parts []string
	var sources []models.Source
	seen := make(map[models.Source]bool)
	used := 0

	for _, hit := range result {
		src := models.Source{SourceID: hit.Record.SourceID, Page: hit.Record.Page}
		if seen[src] {
			continue
		}

		text := utils.TruncateText(hit.Record.OriginalText, s.chunkCharCap)
		if text == "" {
			continue
		}
		if used+len(text) > s.contextBudget {
			text = utils.TruncateText(text, s.contextBudget-used)
			if text == "" {
				break
			}
		}

		seen[src] = true
		sources = append(sources, src)
		parts = append(parts, text)
		used += len(text)

		if used >= s.contextBudget {
			break
		}
	}

	return strings.Join(parts, "\n\n"), sources
}

// buildAnswerPrompt binds the model to the supplied context only.
func buildAnswerPrompt(contextText, questionText string) string {
	return fmt.Sprintf(`You are a helpful university FAQ assistant. Answer student questions based ONLY on the provided university documents.

Rules:
1. Answer based ONLY on the context provided
2. If the answer is not in the context, reply exactly: NOT_IN_CONTEXT
3. Be concise and accurate
4. If you mention dates, policies, or specific information, cite it from the context

Context:
%s

Question: %s

Answer:`, contextText, questionText)
}

// isRefusal detects the sentinel the prompt instructs the model to emit
// when the context does not contain the answer.
func isRefusal(answerText string) bool {
	return strings.Contains(answerText, "NOT_IN_CONTEXT")
}
