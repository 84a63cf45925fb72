package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinvault/document-assistant/internal/core/domain"
	"github.com/clinvault/document-assistant/internal/core/ports"
)

type IngestDocumentUseCase struct {
	repo     ports.DocumentRepository
	storage  ports.ObjectStorage
	pipeline *EmbeddingPipeline
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	pipeline *EmbeddingPipeline,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:     repo,
		storage:  storage,
		pipeline: pipeline,
	}
}

// UploadBatch processes files sequentially, one result entry per file. A
// failure on one file never blocks the rest, and an embedding failure never
// fails the request: the document stays stored, only searchability is lost.
func (uc *IngestDocumentUseCase) UploadBatch(
	ctx context.Context,
	patientID string,
	files []domain.UploadFile,
) ([]domain.UploadResult, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload batch", errors.New("patient id is required"))
	}
	if len(files) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload batch", errors.New("no files uploaded"))
	}

	results := make([]domain.UploadResult, 0, len(files))
	for _, file := range files {
		results = append(results, uc.uploadOne(ctx, patientID, file))
	}
	return results, nil
}

func (uc *IngestDocumentUseCase) uploadOne(ctx context.Context, patientID string, file domain.UploadFile) domain.UploadResult {
	result := domain.UploadResult{
		Name:   file.Name,
		Size:   file.Size,
		Type:   file.ContentType,
		Status: "success",
	}

	doc, err := uc.storeDocument(ctx, patientID, file)
	if err != nil {
		slog.Error("document_upload_failed", "patient_id", patientID, "filename", file.Name, "error", err)
		result.Status = "error"
		result.Error = "failed to store file"
		result.UploadedAt = time.Now().UTC()
		return result
	}

	result.ID = doc.ID
	result.URL = doc.URL
	result.UploadedAt = doc.CreatedAt

	if err := uc.pipeline.Run(ctx, doc, file.Data); err != nil {
		// The document is uploaded regardless; it just will not surface
		// in retrieval until re-processed.
		slog.Warn("document_embedding_failed", "document_id", doc.ID, "filename", file.Name, "error", err)
		result.Status = "error"
		result.Error = "embedding generation failed"
	}
	return result
}

func (uc *IngestDocumentUseCase) storeDocument(ctx context.Context, patientID string, file domain.UploadFile) (*domain.Document, error) {
	id := uuid.NewString()
	storageKey := fmt.Sprintf("patient-%s/%s_%s", patientID, id, sanitizeFilename(file.Name))
	now := time.Now().UTC()

	url, err := uc.storage.Upload(ctx, storageKey, file.ContentType, bytes.NewReader(file.Data))
	if err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		PatientID:   patientID,
		Filename:    file.Name,
		MimeType:    file.ContentType,
		Size:        file.Size,
		StoragePath: storageKey,
		URL:         url,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}
	return doc, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
