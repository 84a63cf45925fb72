package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/clinvault/document-assistant/internal/core/domain"
	"github.com/clinvault/document-assistant/internal/core/ports"
)

// EmbeddingPipeline runs extract -> embed -> store for one document. It is
// shared between the synchronous upload path and the worker's re-processing
// path. Every outcome is recorded as a document status; only the error return
// tells the caller whether the document is searchable.
type EmbeddingPipeline struct {
	repo       ports.DocumentRepository
	extractor  ports.TextExtractor
	embedder   ports.Embedder
	embeddings ports.EmbeddingStore
}

func NewEmbeddingPipeline(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	embedder ports.Embedder,
	embeddings ports.EmbeddingStore,
) *EmbeddingPipeline {
	return &EmbeddingPipeline{
		repo:       repo,
		extractor:  extractor,
		embedder:   embedder,
		embeddings: embeddings,
	}
}

// Run extracts text from the raw bytes and stores exactly one embedding
// record for the document. Blank extraction skips embedding entirely: no
// zero-length or placeholder vectors are ever stored.
func (p *EmbeddingPipeline) Run(ctx context.Context, doc *domain.Document, data []byte) error {
	text, err := p.extractor.Extract(data, doc.Filename)
	if err != nil {
		p.markStatus(ctx, doc.ID, domain.StatusEmbeddingFailed, err.Error())
		return fmt.Errorf("extract text: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		p.markStatus(ctx, doc.ID, domain.StatusSkipped, "")
		return nil
	}

	vector, err := p.embedder.Embed(ctx, text)
	if err != nil {
		p.markStatus(ctx, doc.ID, domain.StatusEmbeddingFailed, err.Error())
		return fmt.Errorf("embed document text: %w", err)
	}

	documentID := doc.ID
	if documentID == "" {
		documentID = uuid.NewString()
	}

	// Re-ingestion replaces: at most one embedding row per document id.
	if err := p.embeddings.DeleteByDocument(ctx, documentID); err != nil {
		p.markStatus(ctx, doc.ID, domain.StatusEmbeddingFailed, err.Error())
		return fmt.Errorf("replace previous embedding: %w", err)
	}

	record := domain.EmbeddingRecord{
		PatientID:  doc.PatientID,
		DocumentID: documentID,
		Vector:     vector,
		Text:       text,
	}
	if err := p.embeddings.Insert(ctx, record); err != nil {
		p.markStatus(ctx, doc.ID, domain.StatusEmbeddingFailed, err.Error())
		return fmt.Errorf("store embedding: %w", err)
	}

	p.markStatus(ctx, doc.ID, domain.StatusEmbedded, "")
	return nil
}

func (p *EmbeddingPipeline) markStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) {
	if err := p.repo.UpdateStatus(ctx, id, status, errMessage); err != nil {
		slog.Warn("update_document_status_failed", "document_id", id, "status", status, "error", err)
	}
}
