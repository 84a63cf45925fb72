package domain

// EmbeddingRecord ties a stored vector to the exact text it was derived from.
// All records compared against one another share the model's dimensionality;
// records that do not are excluded from ranking, never an error.
type EmbeddingRecord struct {
	PatientID  string    `json:"patient_id"`
	DocumentID string    `json:"document_id"`
	Vector     []float32 `json:"vector"`
	Text       string    `json:"text"`
}

// RankedCandidate is a transient ranking result, owned by a single query.
type RankedCandidate struct {
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

type Answer struct {
	Response string            `json:"response"`
	Fallback bool              `json:"-"`
	Sources  []RankedCandidate `json:"sources,omitempty"`
}
