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

// DocumentManagerUseCase covers the read/delete side of document metadata.
type DocumentManagerUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	embeddings ports.EmbeddingStore
}

func NewDocumentManagerUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	embeddings ports.EmbeddingStore,
) *DocumentManagerUseCase {
	return &DocumentManagerUseCase{
		repo:       repo,
		storage:    storage,
		embeddings: embeddings,
	}
}

func (uc *DocumentManagerUseCase) ListByPatient(ctx context.Context, patientID string) ([]domain.Document, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list documents", errors.New("patient id is required"))
	}
	docs, err := uc.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (uc *DocumentManagerUseCase) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.URL == "" {
		return "", domain.WrapError(domain.ErrNotFound, "download document", errors.New("file url not found"))
	}
	return doc.URL, nil
}

// Delete removes the stored bytes, any embedding rows, and the metadata row.
// A storage removal failure is logged but does not block the delete; the
// metadata and embeddings are the source of truth for retrieval.
func (uc *DocumentManagerUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.storage.Remove(ctx, doc.StoragePath); err != nil {
		slog.Warn("storage_remove_failed", "document_id", id, "storage_path", doc.StoragePath, "error", err)
	}

	if err := uc.embeddings.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("delete embeddings: %w", err)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document metadata: %w", err)
	}
	return nil
}
