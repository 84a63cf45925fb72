package ports

import (
	"context"

	"github.com/clinvault/document-assistant/internal/core/domain"
)

// DocumentIngestor is the inbound contract for batch upload orchestration.
// The batch never fails as a whole on a per-file error; every file yields a
// result entry.
type DocumentIngestor interface {
	UploadBatch(ctx context.Context, patientID string, files []domain.UploadFile) ([]domain.UploadResult, error)
}

// DocumentProcessor re-runs the embedding pipeline for a stored document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// QueryService is the inbound contract for retrieval-augmented answers.
type QueryService interface {
	Answer(ctx context.Context, query, patientID string, limit int) (*domain.Answer, error)
}

// DocumentManager is the inbound read/delete model for document metadata.
type DocumentManager interface {
	ListByPatient(ctx context.Context, patientID string) ([]domain.Document, error)
	DownloadURL(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}
