package topics

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"

	"github.com/bookdex/bookdex-server/internal/analysis"
)

// vectorizer builds a TF-IDF term-document representation: stopword
// filtering, snowball stemming, unigrams plus bigrams, document-frequency
// pruning and a vocabulary size cap.
type vectorizer struct {
	language    string
	maxFeatures int
	minDocFreq  int     // terms in fewer documents are pruned
	maxDocRatio float64 // terms in more than this share of documents are pruned
}

func newVectorizer(language string, maxFeatures int) *vectorizer {
	return &vectorizer{
		language:    language,
		maxFeatures: maxFeatures,
		minDocFreq:  2,
		maxDocRatio: 0.8,
	}
}

func snowballLanguage(code string) string {
	if code == "fr" {
		return "french"
	}
	return "english"
}

// tokenize lowercases, strips punctuation and digits, drops stopwords and
// short tokens, and stems what remains.
func tokenize(text, language string) []string {
	stop := analysis.Stopwords(language)
	lang := snowballLanguage(language)

	var tokens []string
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if len(w) < 3 || stop[w] {
			continue
		}
		stemmed, err := snowball.Stem(w, lang, false)
		if err != nil || stemmed == "" {
			stemmed = w
		}
		tokens = append(tokens, stemmed)
	}
	return tokens
}

// terms expands a token stream into unigram and bigram terms.
func terms(tokens []string) []string {
	out := make([]string, 0, 2*len(tokens))
	for i, tok := range tokens {
		out = append(out, tok)
		if i+1 < len(tokens) {
			out = append(out, tok+" "+tokens[i+1])
		}
	}
	return out
}

// fit builds the vocabulary and IDF vector from a corpus and returns the
// L2-normalized TF-IDF matrix (documents by vocabulary terms).
func (v *vectorizer) fit(docs []string) (vocab []string, idf []float64, matrix [][]float64) {
	docTerms := make([]map[string]int, len(docs))
	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)

	for i, doc := range docs {
		counts := make(map[string]int)
		for _, term := range terms(tokenize(doc, v.language)) {
			counts[term]++
		}
		docTerms[i] = counts
		for term, n := range counts {
			docFreq[term]++
			corpusFreq[term] += n
		}
	}

	maxDocs := int(v.maxDocRatio * float64(len(docs)))
	candidates := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < v.minDocFreq {
			continue
		}
		if len(docs) > 1 && df > maxDocs {
			continue
		}
		candidates = append(candidates, term)
	}

	// Cap the vocabulary by corpus frequency, ties broken alphabetically
	// so fitting is deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if corpusFreq[candidates[i]] != corpusFreq[candidates[j]] {
			return corpusFreq[candidates[i]] > corpusFreq[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > v.maxFeatures {
		candidates = candidates[:v.maxFeatures]
	}
	sort.Strings(candidates)
	vocab = candidates

	idf = make([]float64, len(vocab))
	for i, term := range vocab {
		// Smoothed IDF, never zero.
		idf[i] = math.Log(float64(1+len(docs))/float64(1+docFreq[term])) + 1
	}

	matrix = make([][]float64, len(docs))
	index := vocabIndex(vocab)
	for i, counts := range docTerms {
		matrix[i] = vectorizeCounts(counts, index, idf)
	}
	return vocab, idf, matrix
}

// transform projects one document onto a fixed vocabulary.
func transform(text, language string, vocab []string, idf []float64) []float64 {
	counts := make(map[string]int)
	for _, term := range terms(tokenize(text, language)) {
		counts[term]++
	}
	return vectorizeCounts(counts, vocabIndex(vocab), idf)
}

func vocabIndex(vocab []string) map[string]int {
	index := make(map[string]int, len(vocab))
	for i, term := range vocab {
		index[term] = i
	}
	return index
}

func vectorizeCounts(counts map[string]int, index map[string]int, idf []float64) []float64 {
	row := make([]float64, len(idf))
	for term, n := range counts {
		if i, ok := index[term]; ok {
			row[i] = float64(n) * idf[i]
		}
	}
	normalize(row)
	return row
}

// normalize scales a vector to unit L2 norm in place.
func normalize(row []float64) {
	var sq float64
	for _, x := range row {
		sq += x * x
	}
	if sq == 0 {
		return
	}
	norm := math.Sqrt(sq)
	for i := range row {
		row[i] /= norm
	}
}
