package domain

import "time"

// Topic is one latent theme discovered by corpus factorization: a ranked
// keyword list plus the full weight vector over the model vocabulary.
type Topic struct {
	Index    int       `json:"index"`
	Name     string    `json:"name"` // generated from the top keywords
	Keywords []string  `json:"keywords"`
	Weights  []float64 `json:"weights"` // aligned with the model vocabulary
}

// TopicModel is the immutable artifact of one corpus-level fit. Workers
// share a single loaded instance read-only; a new fit produces a new
// version which is swapped in at a quiesce point, never mutated in place.
type TopicModel struct {
	ID         string    `json:"id"` // tm-<nanoid>
	FittedAt   time.Time `json:"fitted_at"`
	K          int       `json:"k"`
	Language   string    `json:"language"`
	DocCount   int       `json:"doc_count"`
	Vocabulary []string  `json:"vocabulary"`
	IDF        []float64 `json:"idf"` // aligned with Vocabulary, for single-document projection
	Topics     []Topic   `json:"topics"`
}

// TopicCount returns the dimensionality of topic vectors produced under
// this model.
func (m *TopicModel) TopicCount() int {
	if m == nil {
		return 0
	}
	return len(m.Topics)
}
