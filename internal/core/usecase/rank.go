package usecase

import (
	"math"
	"sort"

	"github.com/clinvault/document-assistant/internal/core/domain"
)

// cosineSimilarity scores two vectors in [-1, 1]. Degenerate inputs resolve
// to exactly 0: mismatched lengths, a zero-magnitude side, or non-finite
// entries. A malformed embedding must never abort a ranking pass.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}

// rankCandidates scores every record against the query vector and returns the
// top candidates in strictly descending score order. Equal scores keep their
// original input order. The limit is clamped to [1, len(records)].
//
// This is a deliberate O(n) scan: per-owner corpora stay small, and the
// function signature is the stable contract should an index replace it.
func rankCandidates(query []float32, records []domain.EmbeddingRecord, limit int) []domain.RankedCandidate {
	if len(records) == 0 {
		return nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(records) {
		limit = len(records)
	}

	ranked := make([]domain.RankedCandidate, len(records))
	for i, record := range records {
		ranked[i] = domain.RankedCandidate{
			DocumentID: record.DocumentID,
			Text:       record.Text,
			Score:      cosineSimilarity(query, record.Vector),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked[:limit]
}
