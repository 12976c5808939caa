// Package epub reads EPUB containers: Dublin Core metadata and spine-ordered
// chapter markup. It deliberately stops at raw markup; turning markup into
// analyzable text is the extractor's job.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"net/url"
	"path"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/bookdex/bookdex-server/internal/errors"
)

// Metadata is the Dublin Core metadata declared in the book's OPF package.
type Metadata struct {
	Title       string
	Authors     []string // document order
	Language    string
	Publisher   string
	PublishDate string
	ISBN        string
	Identifier  string
	Description string // normalized to markdown
	Subjects    []string
}

// ChapterMarkup is one spine document in reading order, still as raw markup.
type ChapterMarkup struct {
	ID     string
	Href   string
	Markup string
}

// Book is the result of reading one EPUB container.
type Book struct {
	Metadata Metadata
	Chapters []ChapterMarkup
}

// CanRead reports whether the path looks like an EPUB container.
func CanRead(filePath string) bool {
	return strings.EqualFold(path.Ext(filePath), ".epub")
}

// containerXML locates the OPF package document.
type containerXML struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Metadata opfMetadata `xml:"metadata"`
	Manifest struct {
		Items []opfItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []opfItemRef `xml:"itemref"`
	} `xml:"spine"`
}

type opfMetadata struct {
	Titles       []string        `xml:"title"`
	Creators     []string        `xml:"creator"`
	Languages    []string        `xml:"language"`
	Publishers   []string        `xml:"publisher"`
	Dates        []string        `xml:"date"`
	Identifiers  []opfIdentifier `xml:"identifier"`
	Descriptions []string        `xml:"description"`
	Subjects     []string        `xml:"subject"`
}

type opfIdentifier struct {
	Scheme string `xml:"scheme,attr"`
	Value  string `xml:",chardata"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// ReadBook opens the EPUB at path and returns its metadata plus the spine
// documents in reading order. Any structural failure of the container maps
// to a CodeContainerRead error; a book with an intact container but empty
// spine is returned as-is for the extractor to reject.
func ReadBook(filePath string) (*Book, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeContainerRead, "open container %s", filePath)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	opfPath, err := locateOPF(files)
	if err != nil {
		return nil, err
	}

	pkg, err := readOPF(files, opfPath)
	if err != nil {
		return nil, err
	}

	book := &Book{Metadata: buildMetadata(pkg.Metadata)}

	manifest := make(map[string]opfItem, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		manifest[item.ID] = item
	}

	opfDir := path.Dir(opfPath)
	for _, ref := range pkg.Spine.ItemRefs {
		if ref.Linear == "no" {
			continue
		}
		item, ok := manifest[ref.IDRef]
		if !ok {
			continue
		}
		if !isDocumentItem(item.MediaType) {
			continue
		}
		href := resolveHref(opfDir, item.Href)
		f, ok := files[href]
		if !ok {
			continue
		}
		markup, err := readZipFile(f)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeContainerRead, "read spine item %s", href)
		}
		book.Chapters = append(book.Chapters, ChapterMarkup{
			ID:     item.ID,
			Href:   item.Href,
			Markup: markup,
		})
	}

	return book, nil
}

func locateOPF(files map[string]*zip.File) (string, error) {
	f, ok := files["META-INF/container.xml"]
	if !ok {
		return "", errors.ContainerRead("missing META-INF/container.xml")
	}
	data, err := readZipFile(f)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeContainerRead, "read container.xml")
	}

	var c containerXML
	if err := xml.Unmarshal([]byte(data), &c); err != nil {
		return "", errors.Wrap(err, errors.CodeContainerRead, "parse container.xml")
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return "", errors.ContainerRead("container.xml declares no rootfile")
	}
	return c.Rootfiles[0].FullPath, nil
}

func readOPF(files map[string]*zip.File, opfPath string) (*opfPackage, error) {
	f, ok := files[opfPath]
	if !ok {
		return nil, errors.ContainerReadf("missing package document %s", opfPath)
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeContainerRead, "read package document %s", opfPath)
	}

	var pkg opfPackage
	if err := xml.Unmarshal([]byte(data), &pkg); err != nil {
		return nil, errors.Wrapf(err, errors.CodeContainerRead, "parse package document %s", opfPath)
	}
	return &pkg, nil
}

func readZipFile(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func buildMetadata(md opfMetadata) Metadata {
	out := Metadata{
		Authors:  cleanAll(md.Creators),
		Subjects: cleanAll(md.Subjects),
	}

	if len(md.Titles) > 0 {
		out.Title = CleanTitle(md.Titles[0])
	}
	if out.Title == "" {
		out.Title = "Unknown Title"
	}
	if len(md.Languages) > 0 {
		out.Language = strings.TrimSpace(md.Languages[0])
	}
	if len(md.Publishers) > 0 {
		out.Publisher = strings.TrimSpace(md.Publishers[0])
	}
	if len(md.Dates) > 0 {
		out.PublishDate = strings.TrimSpace(md.Dates[0])
	}
	if len(md.Identifiers) > 0 {
		out.Identifier = strings.TrimSpace(md.Identifiers[0].Value)
		out.ISBN = detectISBN(md.Identifiers)
	}
	if len(md.Descriptions) > 0 {
		out.Description = normalizeDescription(md.Descriptions[0])
	}

	return out
}

// CleanTitle strips leading dashes, collapses doubled spaces and trims
// surrounding whitespace. Scraped and converted books frequently carry
// these artifacts in their declared title.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.TrimLeft(title, "-")
	title = strings.TrimSpace(title)
	for strings.Contains(title, "  ") {
		title = strings.ReplaceAll(title, "  ", " ")
	}
	return title
}

// detectISBN picks the first identifier that either declares an ISBN scheme,
// mentions isbn in its value, or is exactly 10 or 13 digits long.
func detectISBN(ids []opfIdentifier) string {
	for _, id := range ids {
		value := strings.TrimSpace(id.Value)
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(id.Scheme), "isbn") ||
			strings.Contains(strings.ToLower(value), "isbn") {
			return value
		}
		if n := digitCount(value); n == 10 || n == 13 {
			return value
		}
	}
	return ""
}

func digitCount(s string) int {
	count := 0
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' && r != 'X' && r != 'x' {
			return -1
		}
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count
}

// normalizeDescription converts an HTML description to markdown. Plain-text
// descriptions pass through unchanged; a conversion failure falls back to
// the raw value rather than losing the description.
func normalizeDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" || !strings.Contains(desc, "<") {
		return desc
	}
	md, err := htmltomarkdown.ConvertString(desc)
	if err != nil {
		return desc
	}
	return strings.TrimSpace(md)
}

func cleanAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func isDocumentItem(mediaType string) bool {
	switch mediaType {
	case "application/xhtml+xml", "text/html", "application/x-dtbook+xml":
		return true
	default:
		return false
	}
}

func resolveHref(opfDir, href string) string {
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	if opfDir == "." || opfDir == "" {
		return href
	}
	return path.Join(opfDir, href)
}
