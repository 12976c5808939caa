package domain

import "time"

// ClassifierSource identifies which classification strategy produced a
// genre distribution.
type ClassifierSource string

// Classifier sources.
const (
	SourceRule  ClassifierSource = "rule"
	SourceModel ClassifierSource = "model"
	SourceFused ClassifierSource = "fused"
)

// ComplexityMetrics holds the readability and statistical measures for one
// book text. All fields are deterministic functions of the input text.
type ComplexityMetrics struct {
	WordCount           int          `json:"word_count"`
	SentenceCount       int          `json:"sentence_count"`
	UniqueWords         int          `json:"unique_words"`
	AvgSentenceLength   float64      `json:"avg_sentence_length"`
	AvgWordLength       float64      `json:"avg_word_length"`
	VocabularyDiversity float64      `json:"vocabulary_diversity"` // unique / total
	FleschReadingEase   float64      `json:"flesch_reading_ease"`
	FleschKincaidGrade  float64      `json:"flesch_kincaid_grade"`
	ComplexityScore     float64      `json:"complexity_score"`
	ReadingLevel        ReadingLevel `json:"reading_level"`
	Difficulty          Difficulty   `json:"difficulty"`
	Language            string       `json:"language"`
}

// AnalysisResult is an append-only record of one analysis run's output for
// a Book. The Book row carries the current denormalized values; these
// records keep historical re-analysis auditable.
type AnalysisResult struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`

	Source       ClassifierSource  `json:"source"` // rule-only when the model was unavailable
	GenreScores  []GenreScore      `json:"genre_scores"` // full distribution over the taxonomy, descending
	Complexity   ComplexityMetrics `json:"complexity"`
	TopicVector  []float64         `json:"topic_vector,omitempty"`
	TopicModelID string            `json:"topic_model_id,omitempty"`
	Degraded     bool              `json:"degraded,omitempty"`  // classifier fell back to rules only
	Unmodeled    bool              `json:"unmodeled,omitempty"` // no fitted topic model at inference time
}
