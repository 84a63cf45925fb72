package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/clinvault/document-assistant/internal/core/domain"
)

type ingestRepoFake struct {
	created   []*domain.Document
	statuses  map[string]domain.DocumentStatus
	createErr error
}

func newIngestRepoFake() *ingestRepoFake {
	return &ingestRepoFake{statuses: map[string]domain.DocumentStatus{}}
}

func (f *ingestRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.created = append(f.created, &copyDoc)
	return nil
}

func (f *ingestRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	for _, doc := range f.created {
		if doc.ID == id {
			copyDoc := *doc
			copyDoc.Status = f.statuses[id]
			return &copyDoc, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get document", errors.New(id))
}

func (f *ingestRepoFake) ListByPatient(context.Context, string) ([]domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *ingestRepoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, _ string) error {
	f.statuses[id] = status
	return nil
}

func (f *ingestRepoFake) Delete(context.Context, string) error {
	return errors.New("not implemented")
}

type ingestStorageFake struct {
	savedKeys []string
	uploadErr error
	data      map[string][]byte
}

func (f *ingestStorageFake) Upload(_ context.Context, key, _ string, data io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	if f.data == nil {
		f.data = map[string][]byte{}
	}
	f.data[key] = raw
	f.savedKeys = append(f.savedKeys, key)
	return "https://storage.example/" + key, nil
}

func (f *ingestStorageFake) Download(_ context.Context, key string) ([]byte, error) {
	raw, ok := f.data[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return raw, nil
}

func (f *ingestStorageFake) Remove(context.Context, ...string) error { return nil }

type ingestEmbeddingStoreFake struct {
	inserted  []domain.EmbeddingRecord
	deleted   []string
	insertErr error
}

func (f *ingestEmbeddingStoreFake) Insert(_ context.Context, record domain.EmbeddingRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, record)
	return nil
}

func (f *ingestEmbeddingStoreFake) SelectByPatient(context.Context, string) ([]domain.EmbeddingRecord, error) {
	return nil, errors.New("not implemented")
}

func (f *ingestEmbeddingStoreFake) DeleteByDocument(_ context.Context, documentID string) error {
	f.deleted = append(f.deleted, documentID)
	return nil
}

type ingestEmbedderFake struct {
	failOn string
	texts  []string
}

func (f *ingestEmbedderFake) Embed(_ context.Context, text string) ([]float32, error) {
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("embedding model unavailable")
	}
	f.texts = append(f.texts, text)
	return []float32{0.1, 0.2, 0.3}, nil
}

type ingestExtractorFake struct {
	byName map[string]string
	err    error
}

func (f *ingestExtractorFake) Extract(_ []byte, fileName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.byName[fileName], nil
}

func newIngestFixture(extractor *ingestExtractorFake, embedder *ingestEmbedderFake) (*IngestDocumentUseCase, *ingestRepoFake, *ingestStorageFake, *ingestEmbeddingStoreFake) {
	repo := newIngestRepoFake()
	storage := &ingestStorageFake{}
	store := &ingestEmbeddingStoreFake{}
	pipeline := NewEmbeddingPipeline(repo, extractor, embedder, store)
	return NewIngestDocumentUseCase(repo, storage, pipeline), repo, storage, store
}

func TestUploadBatchSuccess(t *testing.T) {
	extractor := &ingestExtractorFake{byName: map[string]string{"report.txt": "patient report text"}}
	embedder := &ingestEmbedderFake{}
	uc, repo, storage, store := newIngestFixture(extractor, embedder)

	results, err := uc.UploadBatch(context.Background(), "patient-7", []domain.UploadFile{
		{Name: "report.txt", ContentType: "text/plain", Size: 19, Data: []byte("patient report text")},
	})
	if err != nil {
		t.Fatalf("UploadBatch() error = %v", err)
	}
	if len(results) != 1 || results[0].Status != "success" {
		t.Fatalf("expected one success result, got %+v", results)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected document created")
	}
	doc := repo.created[0]
	if repo.statuses[doc.ID] != domain.StatusEmbedded {
		t.Fatalf("expected status embedded, got %s", repo.statuses[doc.ID])
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected one embedding insert, got %d", len(store.inserted))
	}
	record := store.inserted[0]
	if record.DocumentID != doc.ID || record.PatientID != "patient-7" || record.Text != "patient report text" {
		t.Fatalf("unexpected embedding record: %+v", record)
	}
	if len(store.deleted) != 1 || store.deleted[0] != doc.ID {
		t.Fatalf("expected previous embedding replaced for %s, got %v", doc.ID, store.deleted)
	}
	if !strings.Contains(storage.savedKeys[0], "patient-patient-7/") {
		t.Fatalf("expected patient-scoped storage key, got %s", storage.savedKeys[0])
	}
}

func TestUploadBatchWhitespaceOnlyTextSkipsEmbedding(t *testing.T) {
	extractor := &ingestExtractorFake{byName: map[string]string{"scan.pdf": "   "}}
	embedder := &ingestEmbedderFake{}
	uc, repo, _, store := newIngestFixture(extractor, embedder)

	results, err := uc.UploadBatch(context.Background(), "p-1", []domain.UploadFile{
		{Name: "scan.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
	})
	if err != nil {
		t.Fatalf("UploadBatch() error = %v", err)
	}
	if results[0].Status != "success" {
		t.Fatalf("skipped document is still a successful upload, got %+v", results[0])
	}
	if len(store.inserted) != 0 {
		t.Fatalf("whitespace-only text must not store embeddings, got %d inserts", len(store.inserted))
	}
	if len(embedder.texts) != 0 {
		t.Fatalf("whitespace-only text must not call the embedder")
	}
	if repo.statuses[repo.created[0].ID] != domain.StatusSkipped {
		t.Fatalf("expected status skipped, got %s", repo.statuses[repo.created[0].ID])
	}
}

func TestUploadBatchEmbedderFailureDoesNotFailBatch(t *testing.T) {
	extractor := &ingestExtractorFake{byName: map[string]string{
		"a.txt": "alpha text",
		"b.txt": "broken text",
		"c.txt": "gamma text",
	}}
	embedder := &ingestEmbedderFake{failOn: "broken"}
	uc, repo, _, store := newIngestFixture(extractor, embedder)

	results, err := uc.UploadBatch(context.Background(), "p-2", []domain.UploadFile{
		{Name: "a.txt", ContentType: "text/plain", Data: []byte("alpha text")},
		{Name: "b.txt", ContentType: "text/plain", Data: []byte("broken text")},
		{Name: "c.txt", ContentType: "text/plain", Data: []byte("gamma text")},
	})
	if err != nil {
		t.Fatalf("batch must not fail on a per-file embedding error, got %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 result entries, got %d", len(results))
	}
	var successes, failures int
	for _, result := range results {
		switch result.Status {
		case "success":
			successes++
		case "error":
			failures++
		}
	}
	if successes != 2 || failures != 1 {
		t.Fatalf("expected 2 successes and 1 error, got %d/%d: %+v", successes, failures, results)
	}
	// The failed file is still stored; only searchability is lost.
	if len(repo.created) != 3 {
		t.Fatalf("all 3 documents must be created, got %d", len(repo.created))
	}
	if repo.statuses[repo.created[1].ID] != domain.StatusEmbeddingFailed {
		t.Fatalf("expected embedding_failed for b.txt, got %s", repo.statuses[repo.created[1].ID])
	}
	if len(store.inserted) != 2 {
		t.Fatalf("expected 2 embedding inserts, got %d", len(store.inserted))
	}
}

func TestUploadBatchStorageFailureMarksEntryError(t *testing.T) {
	extractor := &ingestExtractorFake{byName: map[string]string{"a.txt": "text"}}
	uc, repo, storage, _ := newIngestFixture(extractor, &ingestEmbedderFake{})
	storage.uploadErr = errors.New("bucket unavailable")

	results, err := uc.UploadBatch(context.Background(), "p-3", []domain.UploadFile{
		{Name: "a.txt", ContentType: "text/plain", Data: []byte("text")},
	})
	if err != nil {
		t.Fatalf("UploadBatch() error = %v", err)
	}
	if results[0].Status != "error" || results[0].ID != "" {
		t.Fatalf("expected error entry without document id, got %+v", results[0])
	}
	if len(repo.created) != 0 {
		t.Fatalf("no metadata row must exist when storage failed")
	}
}

func TestUploadBatchValidation(t *testing.T) {
	uc, _, _, _ := newIngestFixture(&ingestExtractorFake{}, &ingestEmbedderFake{})

	_, err := uc.UploadBatch(context.Background(), "  ", []domain.UploadFile{{Name: "a.txt"}})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank patient id, got %v", err)
	}

	_, err = uc.UploadBatch(context.Background(), "p-1", nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty batch, got %v", err)
	}
}
