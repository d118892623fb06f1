package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrUnreadableDocument is wrapped by every error caused by input that is
	// not a parseable PDF.
	ErrUnreadableDocument = errors.New("document cannot be parsed as PDF")
	ErrInvalidPageRange   = errors.New("invalid page range")
)

// PageRange selects pages by 1-based inclusive bounds. End == 0 means
// "through the last page".
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end,omitempty"`
}

func AllPages() PageRange {
	return PageRange{Start: 1}
}

func (r PageRange) Validate() error {
	if r.Start < 1 {
		return fmt.Errorf("%w: start page must be at least 1, got %d", ErrInvalidPageRange, r.Start)
	}
	if r.End != 0 && r.End < r.Start {
		return fmt.Errorf("%w: end page %d is before start page %d", ErrInvalidPageRange, r.End, r.Start)
	}
	return nil
}

func (r PageRange) String() string {
	if r.End == 0 {
		return fmt.Sprintf("%d-end", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

type pageSource interface {
	numPages() int
	pageText(n int) (string, error)
}

// Document is an opened PDF.
type Document struct {
	reader *pdf.Reader
}

// Open parses data as a PDF. The PDF library panics on some malformed
// inputs; those panics come back as ErrUnreadableDocument.
func Open(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrUnreadableDocument, r)
		}
	}()

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnreadableDocument)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	// NumPage walks the page tree and is where a broken trailer usually shows up.
	_ = reader.NumPage()

	return &Document{reader: reader}, nil
}

func (d *Document) NumPages() int {
	return d.numPages()
}

// Text returns the text of the pages in r, each followed by a newline.
// Pages past the end of the document are skipped.
func (d *Document) Text(r PageRange) (string, error) {
	return extractRange(d, r)
}

func (d *Document) numPages() (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return d.reader.NumPage()
}

func (d *Document) pageText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: page %d: %v", ErrUnreadableDocument, n, r)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}

	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("%w: page %d: %v", ErrUnreadableDocument, n, err)
	}
	return text, nil
}

func extractRange(src pageSource, r PageRange) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	last := src.numPages()
	if r.End != 0 && r.End < last {
		last = r.End
	}

	var textBuilder strings.Builder
	for i := r.Start; i <= last; i++ {
		text, err := src.pageText(i)
		if err != nil {
			return "", err
		}
		textBuilder.WriteString(norm.NFKC.String(text))
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

// ExtractPDF opens data and returns the text for r.
func ExtractPDF(data []byte, r PageRange) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	doc, err := Open(data)
	if err != nil {
		return "", err
	}

	return doc.Text(r)
}

func CountPages(data []byte) (int, error) {
	doc, err := Open(data)
	if err != nil {
		return 0, err
	}
	return doc.NumPages(), nil
}

// LooksLikePDF reports whether data starts with the PDF header.
func LooksLikePDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
