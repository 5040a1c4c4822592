package pdftext

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// ledongthucBackend uses github.com/ledongthuc/pdf, a pure Go reader that
// renders each page as plain text.
type ledongthucBackend struct{}

func (ledongthucBackend) ExtractPages(data []byte) (pages []string, err error) {
	defer recoverParse(&pages, &err)

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &ParseError{Page: i, Err: err}
		}
		pages = append(pages, text)
	}
	return pages, nil
}
