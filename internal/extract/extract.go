// Package extract pulls the text layer out of uploaded PDF documents.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrExtraction is returned for payloads that are not readable PDFs or have no text layer.
var ErrExtraction = errors.New("pdf extraction failed")

// document is an opened PDF. Close must be called exactly once.
type document interface {
	NumPage() int
	PageText(n int) (string, error)
	Close() error
}

type opener func(data []byte) (document, error)

type Extractor struct {
	// MaxChars caps the returned text in characters; 0 means unbounded.
	MaxChars int

	open opener
	log  *slog.Logger
}

func New(maxChars int, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{MaxChars: maxChars, open: openPDF, log: log}
}

// Extract returns the concatenated text of every page in page order.
func (e *Extractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrExtraction)
	}

	doc, err := e.open(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close: %v", ErrExtraction, cerr)
		}
	}()

	var b strings.Builder
	pages := doc.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pt, err := doc.PageText(i)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrExtraction, i, err)
		}
		b.WriteString(pt)
	}

	text = b.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no extractable text in %d page(s)", ErrExtraction, pages)
	}

	if n := utf8.RuneCountInString(text); e.MaxChars > 0 && n > e.MaxChars {
		e.log.Debug("truncating extracted text", "chars", n, "cap", e.MaxChars)
		text = truncate(text, e.MaxChars)
	}
	return text, nil
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

type pdfDocument struct {
	r *pdf.Reader
}

func openPDF(data []byte) (doc document, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &pdfDocument{r: r}, nil
}

func (d *pdfDocument) NumPage() int {
	return d.r.NumPage()
}

func (d *pdfDocument) PageText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed page: %v", r)
		}
	}()
	p := d.r.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (d *pdfDocument) Close() error {
	if d.r == nil {
		return errors.New("document already closed")
	}
	d.r = nil
	return nil
}
