// Package pdf reads page text and scans the object graph of PDF files.
package pdf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"docsentry/container"
)

// ErrEmptyPage is returned when a page has no extractable text.
var ErrEmptyPage = errors.New("page has no text")

// Document is an open PDF for page-by-page text reading.
type Document struct {
	path   string
	f      *os.File
	reader *lpdf.Reader
	pages  int
}

// Open opens path for reading. Parse failures, including panics from the
// PDF library, are reported as container.ErrUnreadable.
func Open(path string) (doc *Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, container.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w: %v", path, container.ErrUnreadable, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w: %v", path, container.ErrUnreadable, err)
	}

	defer func() {
		if r := recover(); r != nil {
			f.Close()
			doc = nil
			err = fmt.Errorf("parse %s: %v: %w", path, r, container.ErrUnreadable)
		}
	}()

	reader, err := lpdf.NewReader(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, container.ErrUnreadable)
	}
	return &Document{path: path, f: f, reader: reader, pages: reader.NumPage()}, nil
}

// Path returns the file the document was opened from.
func (d *Document) Path() string { return d.path }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.pages }

// PageText returns the text of page i (1-based), one line per text row.
func (d *Document) PageText(i int) (text string, err error) {
	if i < 1 || i > d.pages {
		return "", fmt.Errorf("page %d of %d: %w", i, d.pages, container.ErrNotFound)
	}

	// Guard against any panics from the PDF library.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("page %d: %v: %w", i, r, container.ErrUnreadable)
		}
	}()

	page := d.reader.Page(i)
	if page.V.IsNull() {
		return "", ErrEmptyPage
	}

	var b strings.Builder
	if rows, rerr := page.GetTextByRow(); rerr == nil {
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
			}
			b.WriteByte('\n')
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		plain, perr := page.GetPlainText(nil)
		if perr != nil {
			return "", fmt.Errorf("page %d: %v: %w", i, perr, container.ErrUnreadable)
		}
		b.Reset()
		b.WriteString(plain)
	}

	text = strings.TrimRight(b.String(), "\n")
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyPage
	}
	return text, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	if d == nil || d.f == nil {
		return nil
	}
	return d.f.Close()
}
