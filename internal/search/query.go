package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query string // User's search query

	// Filters
	Genres        []string // Filter by exact genre labels
	ReadingLevels []string // Filter by exact reading level buckets
	Languages     []string // Filter by detected language
	MinComplexity float64  // Minimum complexity score
	MaxComplexity float64  // Maximum complexity score (0 = unbounded)

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "title", "author", "recent", "complexity"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool
	Highlight     bool
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
	Facets Facets `json:"facets,omitempty"`
}

// Hit represents a single matching book.
type Hit struct {
	ID              string            `json:"id"`
	Score           float64           `json:"score"`
	Title           string            `json:"title"`
	Author          string            `json:"author,omitempty"`
	Genre           string            `json:"genre,omitempty"`
	ReadingLevel    string            `json:"reading_level,omitempty"`
	Language        string            `json:"language,omitempty"`
	ComplexityScore float64           `json:"complexity_score,omitempty"`
	WordCount       int               `json:"word_count,omitempty"`
	Highlights      map[string]string `json:"highlights,omitempty"`
}

// Facets contains facet counts over the result set.
type Facets struct {
	Genres    []FacetCount `json:"genres,omitempty"`
	Levels    []FacetCount `json:"levels,omitempty"`
	Languages []FacetCount `json:"languages,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("genre", bleve.NewFacetRequest("genre", 20))
		searchRequest.AddFacet("reading_level", bleve.NewFacetRequest("reading_level", 10))
		searchRequest.AddFacet("language", bleve.NewFacetRequest("language", 10))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("author")
		searchRequest.Highlight.AddField("text")
	}

	searchRequest.Fields = []string{
		"id", "title", "author", "genre", "reading_level", "language",
		"complexity_score", "word_count",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if a, ok := hit.Fields["author"].(string); ok {
			h.Author = a
		}
		if g, ok := hit.Fields["genre"].(string); ok {
			h.Genre = g
		}
		if l, ok := hit.Fields["reading_level"].(string); ok {
			h.ReadingLevel = l
		}
		if l, ok := hit.Fields["language"].(string); ok {
			h.Language = l
		}
		if c, ok := hit.Fields["complexity_score"].(float64); ok {
			h.ComplexityScore = c
		}
		if w, ok := hit.Fields["word_count"].(float64); ok {
			h.WordCount = int(w)
		}

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, h)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
//
// Title matches are boosted over author matches, which are boosted over
// body text. A fuzzy title query adds typo tolerance and a prefix query
// serves incremental typing.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)
		textQueries = append(textQueries, titleMatch)

		authorMatch := bleve.NewMatchQuery(params.Query)
		authorMatch.SetField("author")
		authorMatch.SetBoost(2.0)
		textQueries = append(textQueries, authorMatch)

		textMatch := bleve.NewMatchQuery(params.Query)
		textMatch.SetField("text")
		textQueries = append(textQueries, textMatch)

		subjectsMatch := bleve.NewMatchQuery(params.Query)
		subjectsMatch.SetField("subjects")
		subjectsMatch.SetBoost(1.5)
		textQueries = append(textQueries, subjectsMatch)

		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Genres) > 0 {
		genreQueries := make([]query.Query, len(params.Genres))
		for i, g := range params.Genres {
			gq := bleve.NewTermQuery(g)
			gq.SetField("genre")
			genreQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(genreQueries...))
	}

	if len(params.ReadingLevels) > 0 {
		levelQueries := make([]query.Query, len(params.ReadingLevels))
		for i, l := range params.ReadingLevels {
			lq := bleve.NewTermQuery(l)
			lq.SetField("reading_level")
			levelQueries[i] = lq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(levelQueries...))
	}

	if len(params.Languages) > 0 {
		langQueries := make([]query.Query, len(params.Languages))
		for i, l := range params.Languages {
			lq := bleve.NewTermQuery(l)
			lq.SetField("language")
			langQueries[i] = lq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(langQueries...))
	}

	if params.MinComplexity > 0 || params.MaxComplexity > 0 {
		min := params.MinComplexity
		max := params.MaxComplexity
		if max == 0 {
			max = math.MaxFloat64
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("complexity_score")
		queries = append(queries, rangeQuery)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "title":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-title"})
		} else {
			req.SortBy([]string{"title"})
		}
	case "author":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-author", "-title"})
		} else {
			req.SortBy([]string{"author", "title"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"updated_at"})
		} else {
			req.SortBy([]string{"-updated_at"})
		}
	case "complexity":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-complexity_score"})
		} else {
			req.SortBy([]string{"complexity_score"})
		}
	default:
		req.SortBy([]string{"-_score"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) Facets {
	facets := Facets{}

	if genreFacet, ok := result.Facets["genre"]; ok {
		for _, term := range genreFacet.Terms.Terms() {
			facets.Genres = append(facets.Genres, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if levelFacet, ok := result.Facets["reading_level"]; ok {
		for _, term := range levelFacet.Terms.Terms() {
			facets.Levels = append(facets.Levels, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if langFacet, ok := result.Facets["language"]; ok {
		for _, term := range langFacet.Terms.Terms() {
			facets.Languages = append(facets.Languages, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
