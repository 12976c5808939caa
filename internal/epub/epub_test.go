package epub

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdex/bookdex-server/internal/errors"
)

const testContainerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="3.0">
  <metadata>
    <dc:title>- The  Time Machine</dc:title>
    <dc:creator>H. G. Wells</dc:creator>
    <dc:creator>Some Editor</dc:creator>
    <dc:language>en</dc:language>
    <dc:publisher>Heinemann</dc:publisher>
    <dc:date>1895-05-07</dc:date>
    <dc:identifier>urn:uuid:1234</dc:identifier>
    <dc:identifier opf:scheme="ISBN" xmlns:opf="http://www.idpf.org/2007/opf">9780553213515</dc:identifier>
    <dc:description>&lt;p&gt;A &lt;b&gt;scientist&lt;/b&gt; travels far into the future.&lt;/p&gt;</dc:description>
    <dc:subject>Science Fiction</dc:subject>
    <dc:subject>Time travel</dc:subject>
  </metadata>
  <manifest>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml"/>
    <item id="css" href="style.css" media-type="text/css"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
    <itemref idref="nav" linear="no"/>
    <itemref idref="css"/>
  </spine>
</package>`

func writeTestEpub(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return path
}

func defaultEntries() map[string]string {
	return map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf":      testOPF,
		"OEBPS/ch1.xhtml":        "<html><body><h1>Chapter One</h1><p>It began.</p></body></html>",
		"OEBPS/ch2.xhtml":        "<html><body><h1>Chapter Two</h1><p>It continued.</p></body></html>",
		"OEBPS/nav.xhtml":        "<html><body><nav>toc</nav></body></html>",
	}
}

func TestReadBook_Metadata(t *testing.T) {
	path := writeTestEpub(t, defaultEntries())

	book, err := ReadBook(path)
	require.NoError(t, err)

	md := book.Metadata
	assert.Equal(t, "The Time Machine", md.Title, "leading dash and doubled space should be cleaned")
	assert.Equal(t, []string{"H. G. Wells", "Some Editor"}, md.Authors)
	assert.Equal(t, "en", md.Language)
	assert.Equal(t, "Heinemann", md.Publisher)
	assert.Equal(t, "1895-05-07", md.PublishDate)
	assert.Equal(t, "urn:uuid:1234", md.Identifier)
	assert.Equal(t, "9780553213515", md.ISBN)
	assert.Equal(t, []string{"Science Fiction", "Time travel"}, md.Subjects)
	assert.Contains(t, md.Description, "**scientist**", "description should be markdown")
	assert.NotContains(t, md.Description, "<p>")
}

func TestReadBook_SpineOrder(t *testing.T) {
	path := writeTestEpub(t, defaultEntries())

	book, err := ReadBook(path)
	require.NoError(t, err)

	// Non-linear and non-document spine entries are excluded.
	require.Len(t, book.Chapters, 2)
	assert.Equal(t, "ch1", book.Chapters[0].ID)
	assert.Equal(t, "ch2", book.Chapters[1].ID)
	assert.Contains(t, book.Chapters[0].Markup, "Chapter One")
	assert.Contains(t, book.Chapters[1].Markup, "Chapter Two")
}

func TestReadBook_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.epub")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip archive"), 0o644))

	_, err := ReadBook(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrContainerRead))
}

func TestReadBook_MissingContainerXML(t *testing.T) {
	entries := defaultEntries()
	delete(entries, "META-INF/container.xml")
	path := writeTestEpub(t, entries)

	_, err := ReadBook(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrContainerRead))
}

func TestReadBook_MissingOPF(t *testing.T) {
	entries := defaultEntries()
	delete(entries, "OEBPS/content.opf")
	path := writeTestEpub(t, entries)

	_, err := ReadBook(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrContainerRead))
}

func TestReadBook_EmptySpineIsNotAnError(t *testing.T) {
	entries := defaultEntries()
	entries["OEBPS/content.opf"] = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <metadata><dc:title>Empty</dc:title></metadata>
  <manifest/>
  <spine/>
</package>`
	path := writeTestEpub(t, entries)

	book, err := ReadBook(path)
	require.NoError(t, err)
	assert.Empty(t, book.Chapters)
	assert.Equal(t, "Empty", book.Metadata.Title)
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading dash", "-Dune", "Dune"},
		{"dash and space", "- Dune", "Dune"},
		{"double spaces", "Dune  Messiah", "Dune Messiah"},
		{"surrounding whitespace", "  Dune ", "Dune"},
		{"already clean", "Dune", "Dune"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTitle(tt.in))
		})
	}
}

func TestDetectISBN(t *testing.T) {
	tests := []struct {
		name string
		ids  []opfIdentifier
		want string
	}{
		{
			"scheme attribute",
			[]opfIdentifier{{Scheme: "ISBN", Value: "9780553213515"}},
			"9780553213515",
		},
		{
			"isbn in value",
			[]opfIdentifier{{Value: "isbn:0451524934"}},
			"isbn:0451524934",
		},
		{
			"thirteen digits",
			[]opfIdentifier{{Value: "9780553213515"}},
			"9780553213515",
		},
		{
			"ten digits with dashes",
			[]opfIdentifier{{Value: "0-553-21351-8"}},
			"0-553-21351-8",
		},
		{
			"uuid is not an isbn",
			[]opfIdentifier{{Value: "urn:uuid:8c4b8e51-12f1-4d6e"}},
			"",
		},
		{
			"skips non-isbn then finds one",
			[]opfIdentifier{{Value: "urn:uuid:1234"}, {Scheme: "isbn", Value: "0451524934"}},
			"0451524934",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectISBN(tt.ids))
		})
	}
}

func TestCanRead(t *testing.T) {
	assert.True(t, CanRead("/books/dune.epub"))
	assert.True(t, CanRead("/books/dune.EPUB"))
	assert.False(t, CanRead("/books/dune.mobi"))
	assert.False(t, CanRead("/books/dune"))
}
