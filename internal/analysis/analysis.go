// Package analysis computes deterministic text complexity metrics:
// readability scores, vocabulary statistics and the discrete reading
// level and difficulty buckets derived from them.
package analysis

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"

	"github.com/bookdex/bookdex-server/internal/domain"
)

// minScorableWords is the floor below which readability formulas stop
// being meaningful. Shorter texts get counts but indeterminate buckets.
const minScorableWords = 50

// languageSampleRunes bounds the text fed to language detection.
const languageSampleRunes = 1000

// Coefficients parameterize the reading-ease formula for one language.
type Coefficients struct {
	Base           float64
	SentenceWeight float64
	SyllableWeight float64
}

// DefaultCoefficients returns the standard Flesch coefficients for English
// and the Kandel-Moles adaptation for French.
func DefaultCoefficients() map[string]Coefficients {
	return map[string]Coefficients{
		"en": {Base: 206.835, SentenceWeight: 1.015, SyllableWeight: 84.6},
		"fr": {Base: 207.0, SentenceWeight: 1.015, SyllableWeight: 73.6},
	}
}

// Analyzer computes complexity metrics. It carries no per-book state and
// is safe for concurrent use.
type Analyzer struct {
	language string // auto, en or fr
	coeffs   map[string]Coefficients
}

// New creates an analyzer. language "auto" detects per book; "en" and
// "fr" pin the formulas and stopword set.
func New(language string) *Analyzer {
	return &Analyzer{
		language: language,
		coeffs:   DefaultCoefficients(),
	}
}

// DetectLanguage samples the beginning of the text and maps the detected
// language onto the supported set, falling back to English.
func DetectLanguage(text string) string {
	runes := []rune(text)
	if len(runes) > languageSampleRunes {
		runes = runes[:languageSampleRunes]
	}
	info := whatlanggo.Detect(string(runes))
	if info.Lang == whatlanggo.Fra {
		return "fr"
	}
	return "en"
}

// Analyze computes the full metric set for one book text.
func (a *Analyzer) Analyze(text string) domain.ComplexityMetrics {
	lang := a.language
	if lang == "auto" || lang == "" {
		lang = DetectLanguage(text)
	}

	words := strings.Fields(text)
	sentenceLengths := sentenceWordCounts(text)

	m := domain.ComplexityMetrics{
		WordCount:     len(words),
		SentenceCount: len(sentenceLengths),
		Language:      lang,
		ReadingLevel:  domain.LevelIndeterminate,
		Difficulty:    domain.DifficultyIndeterminate,
	}

	content := contentWords(words, lang)
	if len(content) > 0 {
		unique := make(map[string]bool, len(content))
		var lengthSum int
		for _, w := range content {
			unique[w] = true
			lengthSum += len([]rune(w))
		}
		m.UniqueWords = len(unique)
		m.VocabularyDiversity = float64(len(unique)) / float64(len(content))
		m.AvgWordLength = float64(lengthSum) / float64(len(content))
	}

	if m.SentenceCount > 0 {
		m.AvgSentenceLength = float64(m.WordCount) / float64(m.SentenceCount)
	}

	// Too short to score; counts above are still valid.
	if m.WordCount < minScorableWords || m.SentenceCount == 0 {
		return m
	}

	var syllableSum int
	for _, w := range words {
		syllableSum += countSyllables(w, lang)
	}
	wordsPerSentence := float64(m.WordCount) / float64(m.SentenceCount)
	syllablesPerWord := float64(syllableSum) / float64(m.WordCount)

	c, ok := a.coeffs[lang]
	if !ok {
		c = a.coeffs["en"]
	}
	m.FleschReadingEase = c.Base - c.SentenceWeight*wordsPerSentence - c.SyllableWeight*syllablesPerWord
	m.FleschKincaidGrade = 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59

	complexRatio := complexWordRatio(content, lang)
	veryLongRatio := veryLongSentenceRatio(sentenceLengths)

	score := (m.FleschKincaidGrade + complexRatio*100 + veryLongRatio*100 + m.AvgWordLength*10) / 4
	if score < 0 {
		score = 0
	}
	m.ComplexityScore = score
	m.ReadingLevel = ReadingLevelForGrade(m.FleschKincaidGrade)
	m.Difficulty = DifficultyForScore(score)

	return m
}

// ReadingLevelForGrade buckets a Flesch-Kincaid grade into an audience level.
func ReadingLevelForGrade(grade float64) domain.ReadingLevel {
	switch {
	case grade <= 6:
		return domain.LevelElementary
	case grade <= 8:
		return domain.LevelMiddleSchool
	case grade <= 12:
		return domain.LevelHighSchool
	case grade <= 16:
		return domain.LevelCollege
	default:
		return domain.LevelGraduate
	}
}

// DifficultyForScore buckets a complexity score.
func DifficultyForScore(score float64) domain.Difficulty {
	switch {
	case score < 30:
		return domain.DifficultyVeryEasy
	case score < 50:
		return domain.DifficultyEasy
	case score < 70:
		return domain.DifficultyModerate
	case score < 90:
		return domain.DifficultyHard
	default:
		return domain.DifficultyVeryHard
	}
}

// contentWords lowercases, strips punctuation and drops non-alphabetic
// tokens and stopwords. These feed the vocabulary metrics.
func contentWords(words []string, lang string) []string {
	stop := Stopwords(lang)
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r)
		}))
		if w == "" || stop[w] {
			continue
		}
		if !isAlphabetic(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// sentenceWordCounts splits on terminal punctuation runs and returns the
// word count of each non-empty sentence.
func sentenceWordCounts(text string) []int {
	var counts []int
	start := 0
	flush := func(end int) {
		if n := len(strings.Fields(text[start:end])); n > 0 {
			counts = append(counts, n)
		}
	}
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			flush(i)
			start = i + 1
		}
	}
	flush(len(text))
	return counts
}

func complexWordRatio(content []string, lang string) float64 {
	if len(content) == 0 {
		return 0
	}
	hard := 0
	for _, w := range content {
		if countSyllables(w, lang) >= 3 {
			hard++
		}
	}
	return float64(hard) / float64(len(content))
}

func veryLongSentenceRatio(lengths []int) float64 {
	if len(lengths) == 0 {
		return 0
	}
	veryLong := 0
	for _, l := range lengths {
		if l > 25 {
			veryLong++
		}
	}
	return float64(veryLong) / float64(len(lengths))
}

var frenchVowels = map[rune]bool{
	'a': true, 'e': true, 'i': true, 'o': true, 'u': true, 'y': true,
	'à': true, 'â': true, 'é': true, 'è': true, 'ê': true, 'ë': true,
	'î': true, 'ï': true, 'ô': true, 'ù': true, 'û': true, 'ü': true,
}

func isVowel(r rune, lang string) bool {
	if lang == "fr" {
		return frenchVowels[r]
	}
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// countSyllables approximates syllables as vowel groups, discounting the
// English trailing silent e. Every word counts as at least one syllable.
func countSyllables(word string, lang string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 0
	}

	runes := []rune(word)
	count := 0
	prevVowel := false
	for _, r := range runes {
		v := isVowel(r, lang)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	if lang != "fr" && count > 1 && len(runes) >= 2 &&
		runes[len(runes)-1] == 'e' && !isVowel(runes[len(runes)-2], "en") {
		count--
	}

	if count < 1 {
		count = 1
	}
	return count
}
