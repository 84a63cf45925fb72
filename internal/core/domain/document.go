package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded        DocumentStatus = "uploaded"
	StatusEmbedded        DocumentStatus = "embedded"
	StatusSkipped         DocumentStatus = "skipped"
	StatusEmbeddingFailed DocumentStatus = "embedding_failed"
)

type Document struct {
	ID          string         `json:"id"`
	PatientID   string         `json:"patient_id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	Size        int64          `json:"size"`
	StoragePath string         `json:"storage_path"`
	URL         string         `json:"url,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// UploadFile is one file of a multipart upload batch, fully buffered.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// UploadResult reports the outcome for a single file of a batch. Status is
// "success" or "error"; an error entry may still reference a stored document
// whose embedding step failed.
type UploadResult struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	URL        string    `json:"url,omitempty"`
	UploadedAt time.Time `json:"upload_date"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}
