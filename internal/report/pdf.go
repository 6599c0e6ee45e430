package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	ErrEmptyDocument = errors.New("document is empty")
	ErrNotPDF        = errors.New("document is not a PDF")
	ErrInvalidPDF    = errors.New("document could not be parsed as a PDF")
)

func init() {
	// keep pdfcpu from writing its configuration directory under $HOME
	model.ConfigPath = "disable"
}

// ExtractText returns the text of every page in the PDF held in data.
// Pages are separated by a blank line. Pages whose content cannot be read
// are skipped.
func ExtractText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	if mtype := mimetype.Detect(data); !mtype.Is("application/pdf") {
		return "", fmt.Errorf("%w: detected %s", ErrNotPDF, mtype.String())
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	doc, err := openText(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	pages := make([]string, 0, ctx.PageCount)
	for i := 1; i <= doc.NumPage(); i++ {
		if lines := pageLines(doc.Page(i)); len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}

	return strings.TrimSpace(strings.Join(pages, "\n\n")), nil
}

func openText(data []byte) (doc *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("read text layer: %v", r)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// pageLines lays out the text drawn on p. The reader panics on content
// streams it cannot interpret; such a page yields no lines.
func pageLines(p pdf.Page) (lines []string) {
	if p.V.IsNull() {
		return nil
	}
	defer func() {
		if recover() != nil {
			lines = nil
		}
	}()
	return layoutLines(p.Content().Text)
}
