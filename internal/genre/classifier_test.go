package genre

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdex/bookdex-server/internal/config"
	"github.com/bookdex/bookdex-server/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGenreConfig() config.GenreConfig {
	return config.GenreConfig{
		RuleWeight:          0.6,
		ModelWeight:         0.4,
		ConfidenceThreshold: 0.05,
		MaxSecondary:        3,
	}
}

func TestRuleSet_FieldWeights(t *testing.T) {
	rs := newRuleSet("en")

	// Title hit outweighs text hit outweighs subject hit.
	titleOnly := rs.scores("A Murder Mystery", "plain words here", nil)
	textOnly := rs.scores("Plain Title", "the detective followed a clue", nil)
	subjectOnly := rs.scores("Plain Title", "plain words here", []string{"Mystery"})

	require.Contains(t, titleOnly, "Mystery")
	require.Contains(t, textOnly, "Mystery")
	require.Contains(t, subjectOnly, "Mystery")

	assert.Greater(t, titleOnly["Mystery"], textOnly["Mystery"])
	assert.Greater(t, textOnly["Mystery"], subjectOnly["Mystery"])

	// Subject-only matches are additionally downscaled.
	max := titleWeight + textWeight + subjectWeight
	assert.InDelta(t, subjectWeight*subjectOnlyFactor/max, subjectOnly["Mystery"], 1e-9)
}

func TestRuleSet_AllFieldsCapped(t *testing.T) {
	rs := newRuleSet("en")

	scores := rs.scores("The Detective", "a detective found a clue", []string{"mystery"})
	require.Contains(t, scores, "Mystery")
	assert.InDelta(t, 1.0, scores["Mystery"], 1e-9)
}

func TestRuleSet_WordBoundaries(t *testing.T) {
	rs := newRuleSet("en")

	// "war" must not match inside "warden" or "toward".
	scores := rs.scores("The Warden", "they walked toward the house", nil)
	assert.NotContains(t, scores, "War")

	scores = rs.scores("A War Story", "the war began", nil)
	assert.Contains(t, scores, "War")
}

func TestRuleSet_ScienceFictionRequiresAnchor(t *testing.T) {
	rs := newRuleSet("en")

	// "time travel" is an SF keyword but not an anchor; without any anchor
	// term the genre must not fire.
	scores := rs.scores("A Story", "a curious case of time travel", nil)
	assert.NotContains(t, scores, "Science Fiction")

	// With an anchor present the keyword counts.
	scores = rs.scores("A Story", "the starship made time travel possible", nil)
	assert.Contains(t, scores, "Science Fiction")
}

func TestRuleSet_FantasyRequiresAnchor(t *testing.T) {
	rs := newRuleSet("en")

	// "quest" and "kingdom" are generic; no anchor, no Fantasy.
	scores := rs.scores("The Quest", "a quest across the kingdom", nil)
	assert.NotContains(t, scores, "Fantasy")

	scores = rs.scores("The Quest", "a wizard led the quest across the kingdom", nil)
	assert.Contains(t, scores, "Fantasy")
}

func TestRuleSet_FrenchLexicon(t *testing.T) {
	rs := newRuleSet("fr")

	scores := rs.scores("Le Vaisseau", "le vaisseau quitta la planète", nil)
	assert.Contains(t, scores, "Science Fiction")
}

func TestClassify_DistributionSumsToOne(t *testing.T) {
	c := NewClassifier(testGenreConfig(), testLogger())

	res := c.Classify(
		"The Haunted Starship",
		"an alien ghost haunted the starship on its voyage through the galaxy",
		[]string{"Science Fiction", "Horror"},
		"en",
	)

	require.NotEmpty(t, res.All)
	var sum float64
	for _, gs := range res.All {
		sum += gs.Confidence
		assert.GreaterOrEqual(t, gs.Confidence, 0.0)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// Descending order.
	for i := 1; i < len(res.All); i++ {
		assert.GreaterOrEqual(t, res.All[i-1].Confidence, res.All[i].Confidence)
	}
}

func TestClassify_PrimaryAndSecondaries(t *testing.T) {
	c := NewClassifier(testGenreConfig(), testLogger())

	res := c.Classify(
		"Dragon Mage",
		"the wizard cast a spell as the dragon circled the enchanted kingdom",
		[]string{"Fantasy", "Adventure"},
		"en",
	)

	assert.Equal(t, "Fantasy", res.Primary.Genre)
	assert.LessOrEqual(t, len(res.Secondary), 3)
	for _, gs := range res.Secondary {
		assert.NotEqual(t, res.Primary.Genre, gs.Genre)
		assert.GreaterOrEqual(t, gs.Confidence, 0.05)
	}
}

func TestClassify_NothingMatches(t *testing.T) {
	c := NewClassifier(testGenreConfig(), testLogger())

	res := c.Classify("Untitled", "qwerty zxcvb asdfgh", nil, "en")

	assert.Equal(t, Unknown, res.Primary.Genre)
	assert.Zero(t, res.Primary.Confidence)
	assert.Empty(t, res.All)
	assert.Empty(t, res.Secondary)
}

func TestClassify_DegradedWithoutModel(t *testing.T) {
	c := NewClassifier(testGenreConfig(), testLogger())

	assert.True(t, c.Degraded())
	res := c.Classify("A Murder Mystery", "the detective found a clue", nil, "en")
	assert.True(t, res.Degraded)
	assert.Equal(t, "rule", string(res.Source))
}

func TestClassify_MissingModelFileDegrades(t *testing.T) {
	cfg := testGenreConfig()
	cfg.ModelPath = filepath.Join(t.TempDir(), "missing.json")

	c := NewClassifier(cfg, testLogger())
	assert.True(t, c.Degraded())
}

const testModelJSON = `{
  "classes": ["Science Fiction", "Romance"],
  "vocabulary": ["starship", "love"],
  "log_priors": [-0.6931, -0.6931],
  "log_likelihoods": [[-0.1054, -2.3026], [-2.3026, -0.1054]]
}`

func writeTestModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadModel_Valid(t *testing.T) {
	m, err := LoadModel(writeTestModel(t, testModelJSON))
	require.NoError(t, err)

	probs := m.Predict("the starship left the starship dock")
	assert.Greater(t, probs["Science Fiction"], probs["Romance"])

	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestLoadModel_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{{{{"},
		{"empty classes", `{"classes": [], "vocabulary": ["a"], "log_priors": [], "log_likelihoods": []}`},
		{"mismatched priors", `{"classes": ["A"], "vocabulary": ["a"], "log_priors": [], "log_likelihoods": [[-1.0]]}`},
		{"mismatched row", `{"classes": ["A"], "vocabulary": ["a", "b"], "log_priors": [-1.0], "log_likelihoods": [[-1.0]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadModel(writeTestModel(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrModelUnavailable))
		})
	}
}

func TestClassify_WithModelFuses(t *testing.T) {
	cfg := testGenreConfig()
	cfg.ModelPath = writeTestModel(t, testModelJSON)

	c := NewClassifier(cfg, testLogger())
	require.False(t, c.Degraded())

	res := c.Classify("A Love Story", "love and more love between them", nil, "en")
	assert.Equal(t, "fused", string(res.Source))
	assert.False(t, res.Degraded)
	assert.Equal(t, "Romance", res.Primary.Genre)

	var sum float64
	for _, gs := range res.All {
		sum += gs.Confidence
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestPredict_UnseenTermsIgnored(t *testing.T) {
	m, err := LoadModel(writeTestModel(t, testModelJSON))
	require.NoError(t, err)

	// Only out-of-vocabulary terms: prediction falls back to the priors.
	probs := m.Predict("completely unrelated words")
	assert.InDelta(t, math.Exp(-0.6931)/(2*math.Exp(-0.6931)), probs["Science Fiction"], 1e-6)
}
