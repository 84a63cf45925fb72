package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clinvault/document-assistant/internal/core/domain"
	"github.com/clinvault/document-assistant/internal/core/ports"
)

const (
	defaultTopK = 5
	maxTopK     = 20
)

// answerSystemInstruction binds the synthesizer to the retrieved context:
// answer only from it, and admit when it is insufficient.
const answerSystemInstruction = `You are a helpful assistant that answers questions based on the provided document context.
Use only the information from the context to answer the question.
If the context does not contain enough information to answer the question, say so.
Provide a clear, concise, and accurate response.`

// fallbackAnswer is returned in a success-shaped envelope when synthesis
// itself fails after retrieval succeeded.
const fallbackAnswer = "Unable to generate AI response. Please try again later."

type QueryUseCase struct {
	embedder    ports.Embedder
	embeddings  ports.EmbeddingStore
	synthesizer ports.AnswerSynthesizer
}

func NewQueryUseCase(
	embedder ports.Embedder,
	embeddings ports.EmbeddingStore,
	synthesizer ports.AnswerSynthesizer,
) *QueryUseCase {
	return &QueryUseCase{
		embedder:    embedder,
		embeddings:  embeddings,
		synthesizer: synthesizer,
	}
}

func (uc *QueryUseCase) Answer(ctx context.Context, query, patientID string, limit int) (*domain.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("query is required"))
	}
	if strings.TrimSpace(patientID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("patient id is required"))
	}
	if limit <= 0 {
		limit = defaultTopK
	}
	if limit > maxTopK {
		limit = maxTopK
	}

	queryVector, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := uc.embeddings.SelectByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("fetch embeddings: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.WrapError(domain.ErrNotFound, "answer query", errors.New("no embeddings stored for this patient"))
	}

	ranked := rankCandidates(queryVector, records, limit)

	text, err := uc.synthesizer.Complete(ctx, answerSystemInstruction, buildUserPrompt(query, ranked))
	if err != nil {
		// Retrieval worked; keep the caller-facing contract uniform and
		// downgrade synthesis failure to a flagged fallback answer.
		slog.Warn("answer_synthesis_failed", "patient_id", patientID, "error", err)
		return &domain.Answer{
			Response: fallbackAnswer,
			Fallback: true,
			Sources:  ranked,
		}, nil
	}

	return &domain.Answer{
		Response: text,
		Sources:  ranked,
	}, nil
}

func buildUserPrompt(query string, ranked []domain.RankedCandidate) string {
	texts := make([]string, 0, len(ranked))
	for _, candidate := range ranked {
		texts = append(texts, candidate.Text)
	}

	return fmt.Sprintf(`Context from documents:
%s

Question: %s

Please answer the question based on the context provided above.`, strings.Join(texts, "\n\n"), query)
}
