package genre

import (
	"encoding/json"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/bookdex/bookdex-server/internal/errors"
)

// Model is a pre-trained multinomial term-frequency classifier loaded from
// a JSON artifact. Loading requires no training dependency; the artifact
// carries everything needed for inference.
type Model struct {
	Classes        []string    `json:"classes"`
	Vocabulary     []string    `json:"vocabulary"`
	LogPriors      []float64   `json:"log_priors"`      // [class]
	LogLikelihoods [][]float64 `json:"log_likelihoods"` // [class][term]

	vocabIndex map[string]int
}

// LoadModel reads and validates a model artifact. A missing file is
// reported as CodeModelUnavailable so callers can degrade to rules-only.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- model path comes from configuration
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeModelUnavailable, "read genre model %s", path)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.CodeModelUnavailable, "parse genre model %s", path)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}

	m.vocabIndex = make(map[string]int, len(m.Vocabulary))
	for i, term := range m.Vocabulary {
		m.vocabIndex[term] = i
	}
	return &m, nil
}

func (m *Model) validate() error {
	if len(m.Classes) == 0 || len(m.Vocabulary) == 0 {
		return errors.ModelUnavailable("genre model has empty classes or vocabulary")
	}
	if len(m.LogPriors) != len(m.Classes) || len(m.LogLikelihoods) != len(m.Classes) {
		return errors.ModelUnavailable("genre model priors or likelihoods do not match classes")
	}
	for _, row := range m.LogLikelihoods {
		if len(row) != len(m.Vocabulary) {
			return errors.ModelUnavailable("genre model likelihood row does not match vocabulary")
		}
	}
	return nil
}

// Predict returns a probability distribution over the model's classes for
// one document.
func (m *Model) Predict(text string) map[string]float64 {
	counts := termCounts(text, m.vocabIndex)

	logProbs := make([]float64, len(m.Classes))
	for ci := range m.Classes {
		lp := m.LogPriors[ci]
		for ti, n := range counts {
			lp += float64(n) * m.LogLikelihoods[ci][ti]
		}
		logProbs[ci] = lp
	}

	// Softmax with max subtraction for stability.
	maxLP := math.Inf(-1)
	for _, lp := range logProbs {
		if lp > maxLP {
			maxLP = lp
		}
	}
	var sum float64
	probs := make([]float64, len(logProbs))
	for i, lp := range logProbs {
		probs[i] = math.Exp(lp - maxLP)
		sum += probs[i]
	}

	out := make(map[string]float64, len(m.Classes))
	for i, class := range m.Classes {
		out[class] = probs[i] / sum
	}
	return out
}

// termCounts tokenizes the text and counts occurrences of in-vocabulary
// terms, keyed by vocabulary index.
func termCounts(text string, vocabIndex map[string]int) map[int]int {
	counts := make(map[int]int)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w == "" {
			continue
		}
		if ti, ok := vocabIndex[w]; ok {
			counts[ti]++
		}
	}
	return counts
}
