package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for book documents.
//
// Title and author get term vectors for highlighting; the body text is
// searchable but not stored. Genre, reading level and language use the
// keyword analyzer so facet counts and filters match exact values.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	authorFieldMapping := bleve.NewTextFieldMapping()
	authorFieldMapping.Analyzer = en.AnalyzerName
	authorFieldMapping.Store = true
	authorFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("author", authorFieldMapping)

	// Body text - searchable, never stored (too large)
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = en.AnalyzerName
	textFieldMapping.Store = false
	textFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	subjectsFieldMapping := bleve.NewTextFieldMapping()
	subjectsFieldMapping.Analyzer = en.AnalyzerName
	subjectsFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("subjects", subjectsFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	genreFieldMapping := bleve.NewTextFieldMapping()
	genreFieldMapping.Analyzer = keyword.Name
	genreFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("genre", genreFieldMapping)

	levelFieldMapping := bleve.NewTextFieldMapping()
	levelFieldMapping.Analyzer = keyword.Name
	levelFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("reading_level", levelFieldMapping)

	languageFieldMapping := bleve.NewTextFieldMapping()
	languageFieldMapping.Analyzer = keyword.Name
	languageFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("language", languageFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	complexityFieldMapping := bleve.NewNumericFieldMapping()
	complexityFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("complexity_score", complexityFieldMapping)

	wordCountFieldMapping := bleve.NewNumericFieldMapping()
	wordCountFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("word_count", wordCountFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
