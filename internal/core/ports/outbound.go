package ports

import (
	"context"
	"io"

	"github.com/clinvault/document-assistant/internal/core/domain"
)

// DocumentRepository persists and reads document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByPatient(ctx context.Context, patientID string) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	Delete(ctx context.Context, id string) error
}

// ObjectStorage stores the raw uploaded bytes.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, data io.Reader) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, keys ...string) error
}

// EmbeddingStore persists (owner, document, vector, text) tuples and supports
// bulk owner-scoped retrieval. Similarity ranking happens in-process; the
// store is a plain queryable table, not an index.
type EmbeddingStore interface {
	Insert(ctx context.Context, record domain.EmbeddingRecord) error
	SelectByPatient(ctx context.Context, patientID string) ([]domain.EmbeddingRecord, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Embedder converts text into a fixed-length vector via the external model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// AnswerSynthesizer turns a system instruction plus user prompt into prose.
type AnswerSynthesizer interface {
	Complete(ctx context.Context, systemInstruction, userPrompt string) (string, error)
}

// TextExtractor converts raw bytes plus a filename hint into plain text.
// Unsupported extensions yield "" without error.
type TextExtractor interface {
	Extract(buffer []byte, fileName string) (string, error)
}

// MessageQueue publishes/consumes document re-processing events.
type MessageQueue interface {
	PublishReprocess(ctx context.Context, documentID string) error
	SubscribeReprocess(ctx context.Context, handler func(context.Context, string) error) error
}
