package topics

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdex/bookdex-server/internal/config"
	"github.com/bookdex/bookdex-server/internal/errors"
)

func testModeler(k int) *Modeler {
	return New(config.TopicsConfig{
		K:           k,
		MaxFeatures: 200,
		TopWords:    5,
		MinDocs:     2,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Two clearly separated themes; every content word appears in at least two
// documents so document-frequency pruning keeps it.
func testCorpus() []string {
	fantasy := "the wizard cast spells in the castle while the dragon guarded ancient magic"
	space := "the starship crossed the galaxy as robots repaired the reactor near a distant planet"
	return []string{
		fantasy,
		fantasy + " the dragon feared no wizard and the castle held more magic",
		space,
		space + " the robots charted the galaxy from the starship",
	}
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("The dragons were running quickly through THE castle", "en")

	// Stopwords and short tokens dropped, remainder stemmed.
	assert.NotContains(t, tokens, "the")
	assert.NotContains(t, tokens, "were")
	assert.Contains(t, tokens, "dragon")
	assert.Contains(t, tokens, "run")
	assert.Contains(t, tokens, "castl")
}

func TestTerms_IncludesBigrams(t *testing.T) {
	out := terms([]string{"dark", "tower", "rise"})
	assert.Equal(t, []string{"dark", "dark tower", "tower", "tower rise", "rise"}, out)
}

func TestVectorizer_PrunesByDocumentFrequency(t *testing.T) {
	v := newVectorizer("en", 100)
	docs := []string{
		"aardvark common common",
		"badger common common",
		"cheetah common common",
		"dingo common common",
		"aardvark badger cheetah dingo common",
	}
	vocab, idf, matrix := v.fit(docs)

	// "common" is in all 5 documents, above the 80% document ratio cutoff.
	// Each animal appears in exactly 2 documents and survives min_df=2.
	assert.NotContains(t, vocab, "common")
	assert.Contains(t, vocab, "aardvark")
	assert.Contains(t, vocab, "badger")
	assert.Len(t, idf, len(vocab))
	assert.Len(t, matrix, len(docs))
}

func TestVectorizer_RowsAreUnitNorm(t *testing.T) {
	v := newVectorizer("en", 100)
	_, _, matrix := v.fit(testCorpus())

	for _, row := range matrix {
		var sq float64
		for _, x := range row {
			sq += x * x
		}
		if sq > 0 {
			assert.InDelta(t, 1.0, sq, 1e-9)
		}
	}
}

func TestFactorize_Deterministic(t *testing.T) {
	v := newVectorizer("en", 100)
	_, _, matrix := v.fit(testCorpus())

	W1, H1 := factorize(matrix, 2)
	W2, H2 := factorize(matrix, 2)

	assert.Equal(t, W1, W2)
	assert.Equal(t, H1, H2)
}

func TestFactorize_NonNegativeAndConvergent(t *testing.T) {
	v := newVectorizer("en", 100)
	_, _, matrix := v.fit(testCorpus())

	W, H := factorize(matrix, 2)
	for _, row := range W {
		for _, x := range row {
			assert.GreaterOrEqual(t, x, 0.0)
		}
	}
	for _, row := range H {
		for _, x := range row {
			assert.GreaterOrEqual(t, x, 0.0)
		}
	}

	// A rank-2 structure in a two-theme corpus should reconstruct well.
	var total float64
	for _, row := range matrix {
		for _, x := range row {
			total += x * x
		}
	}
	assert.Less(t, reconstructionError(matrix, W, H), 0.5*total)
}

func TestFit_BuildsModel(t *testing.T) {
	model, err := testModeler(2).Fit(testCorpus(), "en")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(model.ID, "tm-"))
	assert.False(t, model.FittedAt.IsZero())
	assert.Equal(t, 2, model.K)
	assert.Equal(t, "en", model.Language)
	assert.Equal(t, 4, model.DocCount)
	assert.NotEmpty(t, model.Vocabulary)
	assert.Len(t, model.IDF, len(model.Vocabulary))
	require.Len(t, model.Topics, 2)

	for i, topic := range model.Topics {
		assert.Equal(t, i, topic.Index)
		assert.NotEmpty(t, topic.Name)
		assert.LessOrEqual(t, len(topic.Keywords), 5)
		assert.NotEmpty(t, topic.Keywords)
		assert.Len(t, topic.Weights, len(model.Vocabulary))
	}
}

func TestFit_SeparatesThemes(t *testing.T) {
	model, err := testModeler(2).Fit(testCorpus(), "en")
	require.NoError(t, err)

	joined := make([]string, len(model.Topics))
	for i, topic := range model.Topics {
		joined[i] = strings.Join(topic.Keywords, " ")
	}
	all := strings.Join(joined, " | ")

	// Both themes surface somewhere in the keyword sets.
	assert.Contains(t, all, "dragon")
	assert.Contains(t, all, "starship")
}

func TestFit_TooFewDocuments(t *testing.T) {
	_, err := testModeler(2).Fit([]string{"just one document"}, "en")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrModelUnavailable))
}

func TestFit_CapsTopicsAtCorpusSize(t *testing.T) {
	model, err := testModeler(10).Fit(testCorpus(), "en")
	require.NoError(t, err)
	assert.LessOrEqual(t, model.K, 4)
	assert.Len(t, model.Topics, model.K)
}

func TestInfer_MatchesDominantTheme(t *testing.T) {
	m := testModeler(2)
	model, err := m.Fit(testCorpus(), "en")
	require.NoError(t, err)

	vec := m.Infer(model, "a wizard and a dragon fought with magic over the castle")
	require.Len(t, vec, model.K)

	var sum float64
	for _, x := range vec {
		assert.GreaterOrEqual(t, x, 0.0)
		sum += x
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	// The inferred vector must lean towards the topic whose keywords
	// mention dragons.
	fantasyTopic := -1
	for i, topic := range model.Topics {
		if strings.Contains(strings.Join(topic.Keywords, " "), "dragon") {
			fantasyTopic = i
			break
		}
	}
	require.GreaterOrEqual(t, fantasyTopic, 0)
	for i := range vec {
		if i != fantasyTopic {
			assert.GreaterOrEqual(t, vec[fantasyTopic], vec[i])
		}
	}
}

func TestInfer_NilModelYieldsZeroVector(t *testing.T) {
	m := testModeler(7)
	vec := m.Infer(nil, "anything at all")

	require.Len(t, vec, 7)
	for _, x := range vec {
		assert.Zero(t, x)
	}
}

func TestInfer_Deterministic(t *testing.T) {
	m := testModeler(2)
	model, err := m.Fit(testCorpus(), "en")
	require.NoError(t, err)

	text := "robots aboard the starship scanned the galaxy"
	assert.Equal(t, m.Infer(model, text), m.Infer(model, text))
}

func TestSaveAndLoadModel(t *testing.T) {
	m := testModeler(2)
	model, err := m.Fit(testCorpus(), "en")
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := SaveModel(model, dir)
	require.NoError(t, err)
	assert.Contains(t, path, model.ID)

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, model.ID, loaded.ID)
	assert.Equal(t, model.Vocabulary, loaded.Vocabulary)
	assert.Equal(t, len(model.Topics), len(loaded.Topics))

	// Inference through the reloaded artifact matches the original.
	text := "the dragon guarded the castle"
	assert.InDeltaSlice(t, m.Infer(model, text), m.Infer(loaded, text), 1e-12)
}

func TestLoadModel_Missing(t *testing.T) {
	_, err := LoadModel("/nonexistent/model.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrModelUnavailable))
}
