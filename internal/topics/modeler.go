// Package topics fits and applies corpus-level topic models: TF-IDF
// vectorization followed by non-negative matrix factorization. A fitted
// model is an immutable, versioned artifact; inference never mutates it.
package topics

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bookdex/bookdex-server/internal/config"
	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/errors"
	"github.com/bookdex/bookdex-server/internal/id"
)

// Modeler fits topic models and projects documents onto them.
type Modeler struct {
	cfg config.TopicsConfig
	log *slog.Logger
}

// New creates a modeler from configuration.
func New(cfg config.TopicsConfig, log *slog.Logger) *Modeler {
	return &Modeler{cfg: cfg, log: log}
}

// Fit builds a new versioned model from the corpus. The effective topic
// count is bounded by the corpus size; fitting fewer documents than
// configured MinDocs is refused.
func (m *Modeler) Fit(docs []string, lang string) (*domain.TopicModel, error) {
	if len(docs) < m.cfg.MinDocs {
		return nil, errors.ModelUnavailable("corpus too small to fit a topic model")
	}

	k := m.cfg.K
	if k > len(docs) {
		k = len(docs)
	}

	vocab, idf, matrix := newVectorizer(lang, m.cfg.MaxFeatures).fit(docs)
	if len(vocab) == 0 {
		return nil, errors.ModelUnavailable("corpus yields no vocabulary after pruning")
	}
	if k > len(vocab) {
		k = len(vocab)
	}

	start := time.Now()
	W, H := factorize(matrix, k)
	m.log.Debug("factorized corpus",
		slog.Int("documents", len(docs)),
		slog.Int("vocabulary", len(vocab)),
		slog.Int("topics", k),
		slog.Float64("reconstruction_error", reconstructionError(matrix, W, H)),
		slog.Duration("elapsed", time.Since(start)))

	model := &domain.TopicModel{
		ID:         id.MustGenerate("tm"),
		FittedAt:   time.Now().UTC(),
		K:          k,
		Language:   lang,
		DocCount:   len(docs),
		Vocabulary: vocab,
		IDF:        idf,
		Topics:     extractTopics(H, vocab, m.cfg.TopWords),
	}
	return model, nil
}

// Infer projects one document onto a fitted model and returns its
// normalized topic weight vector. A nil model yields the zero vector of
// the configured dimensionality; the caller records Unmodeled.
func (m *Modeler) Infer(model *domain.TopicModel, text string) []float64 {
	if model == nil {
		return make([]float64, m.cfg.K)
	}

	v := transform(text, model.Language, model.Vocabulary, model.IDF)
	H := make([][]float64, len(model.Topics))
	for i, t := range model.Topics {
		H[i] = t.Weights
	}

	w := project(v, H)

	// Normalize to a distribution when anything was recognized at all.
	var sum float64
	for _, x := range w {
		sum += x
	}
	if sum > 0 {
		for i := range w {
			w[i] /= sum
		}
	}
	return w
}

// extractTopics turns the term factor matrix into ranked keyword topics.
func extractTopics(H [][]float64, vocab []string, topWords int) []domain.Topic {
	topics := make([]domain.Topic, len(H))
	for ti, row := range H {
		order := make([]int, len(row))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			if row[order[a]] != row[order[b]] {
				return row[order[a]] > row[order[b]]
			}
			return vocab[order[a]] < vocab[order[b]]
		})

		n := topWords
		if n > len(order) {
			n = len(order)
		}
		keywords := make([]string, n)
		for i := 0; i < n; i++ {
			keywords[i] = vocab[order[i]]
		}

		topics[ti] = domain.Topic{
			Index:    ti,
			Name:     topicName(keywords),
			Keywords: keywords,
			Weights:  row,
		}
	}
	return topics
}

// topicName joins the top three keywords into a display name.
func topicName(keywords []string) string {
	n := 3
	if n > len(keywords) {
		n = len(keywords)
	}
	titled := cases.Title(language.Und)
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = titled.String(keywords[i])
	}
	name := ""
	for i, p := range parts {
		if i > 0 {
			name += " & "
		}
		name += p
	}
	return name
}

// SaveModel persists the artifact as <dir>/<model-id>.json.
func SaveModel(model *domain.TopicModel, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.Wrapf(err, errors.CodePersistence, "create model directory %s", dir)
	}

	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, errors.CodePersistence, "encode topic model")
	}

	path := filepath.Join(dir, model.ID+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", errors.Wrapf(err, errors.CodePersistence, "write topic model %s", path)
	}
	return path, nil
}

// LoadModel reads a previously saved artifact.
func LoadModel(path string) (*domain.TopicModel, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- model path comes from configuration
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeModelUnavailable, "read topic model %s", path)
	}

	var model domain.TopicModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, errors.Wrapf(err, errors.CodeModelUnavailable, "parse topic model %s", path)
	}
	if model.TopicCount() == 0 || len(model.Vocabulary) == 0 {
		return nil, errors.ModelUnavailable("topic model artifact is empty")
	}
	if len(model.IDF) != len(model.Vocabulary) {
		return nil, errors.ModelUnavailable("topic model idf does not match vocabulary")
	}
	return &model, nil
}
