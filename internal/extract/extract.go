// Package extract turns chapter markup into analyzable plain text.
//
// Block-level elements become paragraph breaks so sentence boundaries
// survive the stripping; inline elements contribute their text in place.
// script and style subtrees are dropped entirely.
package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/epub"
	"github.com/bookdex/bookdex-server/internal/errors"
)

// Document is the plain-text form of one book.
type Document struct {
	Chapters  []domain.Chapter
	WordCount int
}

// FullText joins chapter texts with blank lines, preserving reading order.
func (d *Document) FullText() string {
	parts := make([]string, 0, len(d.Chapters))
	for _, ch := range d.Chapters {
		parts = append(parts, ch.Text)
	}
	return strings.Join(parts, "\n\n")
}

// blockElements force a paragraph break before and after their content.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "dl": true, "dd": true, "dt": true,
	"blockquote": true, "pre": true, "figure": true, "figcaption": true,
	"table": true, "tr": true, "br": true, "hr": true, "body": true,
}

var headingElements = map[string]bool{
	"h1": true, "h2": true, "h3": true,
}

// Extract converts ordered chapter markup into a Document. Chapters that
// yield no text are dropped; if no chapter yields text the whole book is
// rejected with a CodeExtraction error.
func Extract(chapters []epub.ChapterMarkup) (*Document, error) {
	doc := &Document{}

	for _, cm := range chapters {
		text, title := chapterText(cm.Markup)
		if text == "" {
			continue
		}
		ch := domain.Chapter{
			Index:     len(doc.Chapters),
			ChapterID: cm.ID,
			Title:     title,
			Text:      text,
			WordCount: len(strings.Fields(text)),
		}
		doc.Chapters = append(doc.Chapters, ch)
		doc.WordCount += ch.WordCount
	}

	if len(doc.Chapters) == 0 {
		return nil, errors.Extraction("no extractable text in any chapter")
	}
	return doc, nil
}

// chapterText tokenizes one chapter's markup and returns its cleaned text
// plus the text of its first heading, if any.
func chapterText(markup string) (text, title string) {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))

	var (
		paragraphs []string
		current    strings.Builder
		skipDepth  int
		headingBuf *strings.Builder
	)

	flush := func() {
		if p := collapseWhitespace(current.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			// io.EOF and malformed-markup bailouts both end the chapter;
			// whatever was collected still counts.
			break
		}

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
			if blockElements[tag] {
				flush()
			}
			if title == "" && headingElements[tag] && tt == html.StartTagToken && skipDepth == 0 {
				headingBuf = &strings.Builder{}
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if blockElements[tag] {
				flush()
			}
			if headingBuf != nil && headingElements[tag] {
				if h := collapseWhitespace(headingBuf.String()); h != "" {
					title = h
				}
				headingBuf = nil
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			t := string(tokenizer.Text())
			current.WriteString(t)
			if headingBuf != nil {
				headingBuf.WriteString(t)
			}
		}
	}
	flush()

	return strings.Join(paragraphs, "\n\n"), title
}

// collapseWhitespace trims and folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
