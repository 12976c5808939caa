package indexer

import "github.com/bookdex/bookdex-server/internal/epub"

// ChapterSource turns a book file into metadata and ordered chapter
// markup. The pipeline consumes it as an opaque capability and never
// interprets the container format itself.
type ChapterSource interface {
	ReadBook(path string) (*epub.Book, error)
}

// epubSource is the production ChapterSource.
type epubSource struct{}

func (epubSource) ReadBook(path string) (*epub.Book, error) {
	return epub.ReadBook(path)
}
