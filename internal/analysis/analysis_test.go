package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdex/bookdex-server/internal/domain"
)

func TestReadingLevelForGrade(t *testing.T) {
	tests := []struct {
		grade float64
		want  domain.ReadingLevel
	}{
		{3, domain.LevelElementary},
		{6, domain.LevelElementary},
		{6.1, domain.LevelMiddleSchool},
		{8, domain.LevelMiddleSchool},
		{10, domain.LevelHighSchool},
		{12, domain.LevelHighSchool},
		{14, domain.LevelCollege},
		{16, domain.LevelCollege},
		{16.5, domain.LevelGraduate},
		{22, domain.LevelGraduate},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ReadingLevelForGrade(tt.grade), "grade %v", tt.grade)
	}
}

func TestDifficultyForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  domain.Difficulty
	}{
		{0, domain.DifficultyVeryEasy},
		{29.9, domain.DifficultyVeryEasy},
		{30, domain.DifficultyEasy},
		{49.9, domain.DifficultyEasy},
		{50, domain.DifficultyModerate},
		{69.9, domain.DifficultyModerate},
		{70, domain.DifficultyHard},
		{89.9, domain.DifficultyHard},
		{90, domain.DifficultyVeryHard},
		{120, domain.DifficultyVeryHard},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DifficultyForScore(tt.score), "score %v", tt.score)
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"dog", 1},
		{"the", 1},
		{"make", 1},
		{"reading", 2},
		{"beautiful", 3},
		{"university", 5},
		{"xyz", 1}, // no vowels still counts one
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, countSyllables(tt.word, "en"))
		})
	}
}

func TestSentenceWordCounts(t *testing.T) {
	counts := sentenceWordCounts("Hello world. How are you today? Fine! Trailing words without a stop")
	assert.Equal(t, []int{2, 4, 1, 5}, counts)

	assert.Empty(t, sentenceWordCounts(""))
	assert.Empty(t, sentenceWordCounts("... !!! ???"))
}

func TestAnalyze_EmptyText(t *testing.T) {
	m := New("en").Analyze("")

	assert.Equal(t, 0, m.WordCount)
	assert.Equal(t, 0, m.SentenceCount)
	assert.Equal(t, domain.LevelIndeterminate, m.ReadingLevel)
	assert.Equal(t, domain.DifficultyIndeterminate, m.Difficulty)
	assert.Zero(t, m.ComplexityScore)
}

func TestAnalyze_ShortTextIsIndeterminate(t *testing.T) {
	m := New("en").Analyze("A tiny fragment of text. Far below the scoring floor.")

	assert.Equal(t, 10, m.WordCount)
	assert.Equal(t, 2, m.SentenceCount)
	assert.Equal(t, domain.LevelIndeterminate, m.ReadingLevel)
	assert.Equal(t, domain.DifficultyIndeterminate, m.Difficulty)
	assert.Zero(t, m.FleschKincaidGrade)
	assert.Zero(t, m.FleschReadingEase)
}

func TestAnalyze_SimpleEnglishText(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("The cat sat on the mat. ", 10))

	m := New("en").Analyze(text)

	assert.Equal(t, 60, m.WordCount)
	assert.Equal(t, 10, m.SentenceCount)
	assert.Equal(t, "en", m.Language)
	assert.InDelta(t, 6.0, m.AvgSentenceLength, 0.001)

	// One-syllable words in short sentences score far below grade school.
	assert.InDelta(t, -1.45, m.FleschKincaidGrade, 0.01)
	assert.Greater(t, m.FleschReadingEase, 100.0)
	assert.Equal(t, domain.LevelElementary, m.ReadingLevel)
	assert.Equal(t, domain.DifficultyVeryEasy, m.Difficulty)

	// Content words: cat, sat, mat repeated.
	assert.Equal(t, 3, m.UniqueWords)
	assert.InDelta(t, 0.1, m.VocabularyDiversity, 0.001)
}

func TestAnalyze_ComplexTextScoresHigher(t *testing.T) {
	simple := strings.Repeat("The dog ran fast. He was glad. ", 10)
	dense := strings.Repeat(
		"Epistemological considerations notwithstanding, the institutional "+
			"transformation precipitated unprecedented methodological "+
			"reorganization throughout contemporaneous administrative "+
			"bureaucracies and intergovernmental organizations worldwide. ", 5)

	a := New("en")
	simpleM := a.Analyze(simple)
	denseM := a.Analyze(dense)

	assert.Greater(t, denseM.FleschKincaidGrade, simpleM.FleschKincaidGrade)
	assert.Less(t, denseM.FleschReadingEase, simpleM.FleschReadingEase)
	assert.Greater(t, denseM.ComplexityScore, simpleM.ComplexityScore)
	assert.Equal(t, domain.LevelGraduate, denseM.ReadingLevel)
}

func TestAnalyze_Deterministic(t *testing.T) {
	text := strings.Repeat("Every run over the same text must produce the same numbers. ", 8)

	a := New("en")
	first := a.Analyze(text)
	second := a.Analyze(text)

	assert.Equal(t, first, second)
}

func TestDetectLanguage(t *testing.T) {
	english := strings.Repeat("The morning sun rose over the quiet village and the baker began his work. ", 5)
	french := strings.Repeat("Le soleil du matin se levait sur le petit village et le boulanger commençait son travail. ", 5)

	assert.Equal(t, "en", DetectLanguage(english))
	assert.Equal(t, "fr", DetectLanguage(french))
}

func TestAnalyze_AutoDetectsFrench(t *testing.T) {
	french := strings.Repeat("Le soleil du matin se levait sur le petit village et le boulanger commençait son travail. ", 6)

	m := New("auto").Analyze(french)
	require.Equal(t, "fr", m.Language)
	assert.NotEqual(t, domain.LevelIndeterminate, m.ReadingLevel)
}

func TestStopwords(t *testing.T) {
	en := Stopwords("en")
	assert.True(t, en["the"])
	assert.False(t, en["dragon"])

	fr := Stopwords("fr")
	assert.True(t, fr["le"])
	assert.False(t, fr["dragon"])

	// Unknown codes fall back to English.
	assert.True(t, Stopwords("xx")["the"])
}
