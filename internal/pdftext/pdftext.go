// Package pdftext extracts plain text from uploaded PDF files.
//
// Parsing is delegated to a Backend. Extraction is fail-soft: a parse
// failure is reported inside the extracted text rather than as an error
// status.
package pdftext

import (
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by NewBackend.
const (
	BackendLedongthuc = "ledongthuc"
	BackendRSC        = "rsc"
)

// pageSeparator joins the text of consecutive pages.
const pageSeparator = "\n\n"

// ErrUnknownBackend is returned by NewBackend for an unrecognised name.
var ErrUnknownBackend = errors.New("unknown pdf backend")

// Backend turns PDF bytes into the text of each page, in page order.
// Failures are returned as *ParseError.
type Backend interface {
	ExtractPages(data []byte) ([]string, error)
}

// ParseError reports that a backend could not read a document.
type ParseError struct {
	Page int // 1-based page number, 0 when the document itself failed
	Err  error
}

func (e *ParseError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("page %d: %v", e.Page, e.Err)
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewBackend returns the backend registered under name.
// An empty name selects the default backend.
func NewBackend(name string) (Backend, error) {
	switch name {
	case "", BackendLedongthuc:
		return ledongthucBackend{}, nil
	case BackendRSC:
		return rscBackend{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Result is the outcome of Extractor.Extract.
type Result struct {
	// Text is what should be shown to the user. On a parse failure it
	// holds a bracketed error message.
	Text string
	// Skipped is true when the upload was missing or not named *.pdf.
	Skipped bool
	// Err is the parse failure, if any. It is already embedded in Text.
	Err error
}

// Extractor applies the upload rules around a Backend.
type Extractor struct {
	backend Backend
}

// NewExtractor creates an Extractor using backend.
func NewExtractor(backend Backend) *Extractor {
	return &Extractor{backend: backend}
}

// Accepts reports whether filename is eligible for extraction. The check is
// a case-sensitive suffix match on the name only.
func Accepts(filename string) bool {
	return strings.HasSuffix(filename, ".pdf")
}

// Extract returns the text of an uploaded file. Files not named *.pdf yield
// an empty, skipped result.
func (e *Extractor) Extract(filename string, data []byte) Result {
	if !Accepts(filename) {
		return Result{Skipped: true}
	}

	text, err := e.ExtractText(data)
	if err != nil {
		return Result{Text: FailSoft(err), Err: err}
	}
	return Result{Text: text}
}

// FailSoft formats err as the text shown in place of an extraction.
func FailSoft(err error) string {
	return fmt.Sprintf("[Error reading PDF: %v]", err)
}

// ExtractText joins the text of all pages with a blank line and trims the
// result.
func (e *Extractor) ExtractText(data []byte) (string, error) {
	pages, err := e.backend.ExtractPages(data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(pages, pageSeparator)), nil
}

// recoverParse turns a panic raised inside a PDF library into a *ParseError.
// Both libraries panic on some malformed input.
func recoverParse(pages *[]string, err *error) {
	if r := recover(); r != nil {
		*pages = nil
		*err = &ParseError{Err: fmt.Errorf("%v", r)}
	}
}
