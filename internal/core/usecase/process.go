package usecase

import (
	"context"
	"fmt"

	"github.com/clinvault/document-assistant/internal/core/ports"
)

// ProcessDocumentUseCase re-runs the embedding pipeline for an already
// stored document, pulling the bytes back from object storage. Used by the
// worker to recover failed or skipped documents.
type ProcessDocumentUseCase struct {
	repo     ports.DocumentRepository
	storage  ports.ObjectStorage
	pipeline *EmbeddingPipeline
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	pipeline *EmbeddingPipeline,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:     repo,
		storage:  storage,
		pipeline: pipeline,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	data, err := uc.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		return fmt.Errorf("download source document: %w", err)
	}

	return uc.pipeline.Run(ctx, doc, data)
}
