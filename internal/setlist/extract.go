package setlist

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Default markers used by setlist.fm setlist pages.
const (
	DefaultContainerTag   = "div"
	DefaultContainerClass = "setlistList"
	DefaultItemTag        = "li"
	DefaultAnchorTag      = "a"
	DefaultSongClass      = "songLabel"
)

// ErrNoSetlist is returned when the document has no setlist container.
var ErrNoSetlist = errors.New("setlist container not found")

// Extractor pulls song titles out of a setlist page.
//
// The container is the first ContainerTag element carrying ContainerClass.
// Below it, every ItemTag element is searched for AnchorTag descendants, and
// those carrying SongClass yield one title each. Class matching is by exact,
// case-sensitive token.
type Extractor struct {
	ContainerTag   string
	ContainerClass string
	ItemTag        string
	AnchorTag      string
	SongClass      string
}

// Default returns an Extractor for setlist.fm markup.
func Default() *Extractor {
	return &Extractor{
		ContainerTag:   DefaultContainerTag,
		ContainerClass: DefaultContainerClass,
		ItemTag:        DefaultItemTag,
		AnchorTag:      DefaultAnchorTag,
		SongClass:      DefaultSongClass,
	}
}

// Extract parses htmlContent and returns the song titles in document order.
func (e *Extractor) Extract(htmlContent string) ([]string, error) {
	return e.ExtractFromReader(strings.NewReader(htmlContent))
}

// ExtractFromReader is like Extract but reads the document from r.
func (e *Extractor) ExtractFromReader(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return e.ExtractDocument(doc)
}

// ExtractDocument returns the song titles of an already parsed document.
func (e *Extractor) ExtractDocument(doc *goquery.Document) ([]string, error) {
	container, err := e.Container(doc)
	if err != nil {
		return nil, err
	}

	// Walk per item rather than flattening, so an anchor inside nested
	// items is reported once for each item that contains it.
	titles := []string{}
	container.Find(e.ItemTag).Each(func(_ int, item *goquery.Selection) {
		item.Find(e.AnchorTag).Each(func(_ int, a *goquery.Selection) {
			if a.HasClass(e.SongClass) {
				titles = append(titles, a.Text())
			}
		})
	})

	return titles, nil
}

// Container returns the first element that marks the setlist.
func (e *Extractor) Container(doc *goquery.Document) (*goquery.Selection, error) {
	container := doc.Find(e.ContainerTag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.HasClass(e.ContainerClass)
	}).First()

	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: no <%s> with class %q", ErrNoSetlist, e.ContainerTag, e.ContainerClass)
	}
	return container, nil
}
