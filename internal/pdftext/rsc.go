package pdftext

import (
	"bytes"
	"math"
	"strings"

	"rsc.io/pdf"
)

const (
	// Vertical moves smaller than this (in text space units) stay on the line.
	lineTolerance = 1.0
	// A TJ adjustment of at least this many thousandths of an em is a word gap.
	kernSpace = 250
)

// rscBackend uses rsc.io/pdf. Its positioned glyph output drops space
// characters and carries no advance widths for the standard fonts, so the
// text operators of the content stream are interpreted here instead.
type rscBackend struct{}

func (rscBackend) ExtractPages(data []byte) (pages []string, err error) {
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
		pages = append(pages, pageText(page))
	}
	return pages, nil
}

// pageText interprets every content stream of page.
func pageText(page pdf.Page) string {
	w := &textWriter{}
	contents := page.V.Key("Contents")
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			w.interpret(page, contents.Index(i))
		}
	} else if !contents.IsNull() {
		w.interpret(page, contents)
	}
	return w.b.String()
}

// textWriter accumulates decoded text, one output line per text line.
type textWriter struct {
	b     strings.Builder
	enc   pdf.TextEncoding
	y     float64
	haveY bool
}

func (w *textWriter) interpret(page pdf.Page, strm pdf.Value) {
	pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "Tf":
			if len(args) == 2 {
				w.enc = page.Font(args[0].Name()).Encoder()
			}
		case "Tj":
			if len(args) == 1 {
				w.show(args[0])
			}
		case "'":
			if len(args) == 1 {
				w.newline()
				w.show(args[0])
			}
		case `"`:
			if len(args) == 3 {
				w.newline()
				w.show(args[2])
			}
		case "TJ":
			if len(args) == 1 {
				w.showArray(args[0])
			}
		case "T*":
			w.newline()
		case "Td", "TD":
			if len(args) == 2 && math.Abs(args[1].Float64()) > lineTolerance {
				w.newline()
			}
		case "Tm":
			if len(args) == 6 {
				y := args[5].Float64()
				if w.haveY && math.Abs(y-w.y) > lineTolerance {
					w.newline()
				}
				w.y, w.haveY = y, true
			}
		}
	})
}

func (w *textWriter) show(v pdf.Value) {
	if v.Kind() != pdf.String {
		return
	}
	raw := v.RawString()
	if w.enc == nil {
		w.b.WriteString(raw)
		return
	}
	w.b.WriteString(w.enc.Decode(raw))
}

// showArray writes a TJ operand. Numbers are kerning adjustments; a large
// negative one separates words.
func (w *textWriter) showArray(arr pdf.Value) {
	for i := 0; i < arr.Len(); i++ {
		v := arr.Index(i)
		switch v.Kind() {
		case pdf.String:
			w.show(v)
		case pdf.Integer, pdf.Real:
			if -v.Float64() >= kernSpace {
				w.space()
			}
		}
	}
}

func (w *textWriter) newline() {
	s := w.b.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		w.b.WriteByte('\n')
	}
}

func (w *textWriter) space() {
	s := w.b.String()
	if s != "" && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
		w.b.WriteByte(' ')
	}
}
