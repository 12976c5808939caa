package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdex/bookdex-server/internal/epub"
	"github.com/bookdex/bookdex-server/internal/errors"
)

func markup(id, body string) epub.ChapterMarkup {
	return epub.ChapterMarkup{ID: id, Markup: "<html><body>" + body + "</body></html>"}
}

func TestExtract_BasicChapter(t *testing.T) {
	doc, err := Extract([]epub.ChapterMarkup{
		markup("ch1", "<h1>Chapter One</h1><p>It was a dark night.</p><p>The rain fell.</p>"),
	})
	require.NoError(t, err)

	require.Len(t, doc.Chapters, 1)
	ch := doc.Chapters[0]
	assert.Equal(t, 0, ch.Index)
	assert.Equal(t, "ch1", ch.ChapterID)
	assert.Equal(t, "Chapter One", ch.Title)
	assert.Equal(t, "Chapter One\n\nIt was a dark night.\n\nThe rain fell.", ch.Text)
	assert.Equal(t, 10, ch.WordCount)
	assert.Equal(t, 10, doc.WordCount)
}

func TestExtract_DropsScriptAndStyle(t *testing.T) {
	doc, err := Extract([]epub.ChapterMarkup{
		markup("ch1", `<style>p { color: red; }</style><p>Visible text.</p><script>var x = "hidden";</script>`),
	})
	require.NoError(t, err)

	require.Len(t, doc.Chapters, 1)
	assert.Equal(t, "Visible text.", doc.Chapters[0].Text)
	assert.NotContains(t, doc.Chapters[0].Text, "color")
	assert.NotContains(t, doc.Chapters[0].Text, "hidden")
}

func TestExtract_BlockBoundariesKeepSentencesApart(t *testing.T) {
	// Without paragraph breaks the two sentences would fuse into
	// "ends hereAnd starts".
	doc, err := Extract([]epub.ChapterMarkup{
		markup("ch1", "<div>The first sentence ends here.</div><div>And a new one starts.</div>"),
	})
	require.NoError(t, err)

	assert.Equal(t, "The first sentence ends here.\n\nAnd a new one starts.", doc.Chapters[0].Text)
}

func TestExtract_InlineMarkupStaysJoined(t *testing.T) {
	doc, err := Extract([]epub.ChapterMarkup{
		markup("ch1", "<p>He said <em>never</em> again, <b>loudly</b>.</p>"),
	})
	require.NoError(t, err)

	assert.Equal(t, "He said never again, loudly.", doc.Chapters[0].Text)
}

func TestExtract_PreservesChapterOrder(t *testing.T) {
	doc, err := Extract([]epub.ChapterMarkup{
		markup("a", "<p>First chapter.</p>"),
		markup("b", "<p>Second chapter.</p>"),
		markup("c", "<p>Third chapter.</p>"),
	})
	require.NoError(t, err)

	require.Len(t, doc.Chapters, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, doc.Chapters[i].ChapterID)
		assert.Equal(t, i, doc.Chapters[i].Index)
	}
	assert.Equal(t, "First chapter.\n\nSecond chapter.\n\nThird chapter.", doc.FullText())
}

func TestExtract_EmptyChaptersDropped(t *testing.T) {
	doc, err := Extract([]epub.ChapterMarkup{
		markup("empty", "<div><style>.x{}</style></div>"),
		markup("real", "<p>Some words.</p>"),
	})
	require.NoError(t, err)

	require.Len(t, doc.Chapters, 1)
	assert.Equal(t, "real", doc.Chapters[0].ChapterID)
	// Re-indexed after the drop.
	assert.Equal(t, 0, doc.Chapters[0].Index)
}

func TestExtract_NothingExtractable(t *testing.T) {
	_, err := Extract([]epub.ChapterMarkup{
		markup("ch1", "<script>only();</script>"),
		markup("ch2", "<div>   </div>"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExtraction))
}

func TestExtract_NoChapters(t *testing.T) {
	_, err := Extract(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExtraction))
}

func TestExtract_CollapsesWhitespace(t *testing.T) {
	doc, err := Extract([]epub.ChapterMarkup{
		markup("ch1", "<p>Spread \n\t  out     words.</p>"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Spread out words.", doc.Chapters[0].Text)
}

func TestExtract_FirstHeadingOnlyBecomesTitle(t *testing.T) {
	doc, err := Extract([]epub.ChapterMarkup{
		markup("ch1", "<h2>Real Title</h2><p>Body.</p><h2>Later Heading</h2><p>More.</p>"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Real Title", doc.Chapters[0].Title)
}
