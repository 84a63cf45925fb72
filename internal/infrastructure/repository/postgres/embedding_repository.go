package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinvault/document-assistant/internal/core/domain"
)

// EmbeddingRepository persists one embedding row per document. Vectors are
// stored as JSONB arrays; ranking happens in process, so reads are bulk
// fetches by patient.
type EmbeddingRepository struct {
	db *sql.DB
}

func NewEmbeddingRepository(db *sql.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db: db}
}

func (r *EmbeddingRepository) Insert(ctx context.Context, record domain.EmbeddingRecord) error {
	vectorJSON, err := json.Marshal(record.Vector)
	if err != nil {
		return fmt.Errorf("marshal embedding vector: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO document_embeddings (id, patient_id, document_id, embedding, content, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, uuid.NewString(), record.PatientID, record.DocumentID, vectorJSON, record.Text, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert embedding: %w", err)
	}
	return nil
}

func (r *EmbeddingRepository) SelectByPatient(ctx context.Context, patientID string) ([]domain.EmbeddingRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT patient_id, document_id, embedding, content
FROM document_embeddings
WHERE patient_id = $1
ORDER BY created_at ASC
`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query embeddings by patient: %w", err)
	}
	defer rows.Close()

	var records []domain.EmbeddingRecord
	for rows.Next() {
		var record domain.EmbeddingRecord
		var vectorRaw []byte
		if err := rows.Scan(&record.PatientID, &record.DocumentID, &vectorRaw, &record.Text); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}
		if err := json.Unmarshal(vectorRaw, &record.Vector); err != nil {
			return nil, fmt.Errorf("unmarshal embedding vector: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embedding rows: %w", err)
	}
	return records, nil
}

func (r *EmbeddingRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM document_embeddings WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete embeddings for document: %w", err)
	}
	return nil
}
