package server

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"github.com/thebtf/webtools/internal/pdftext"
)

const downloadName = "extracted.txt"

type pdfPage struct {
	Extracted string
}

func (s *Service) handlePDFPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "pdf2text.html", pdfPage{})
}

// handlePDFUpload extracts text from the pdf_file upload. A missing upload,
// a non-.pdf name or an unparseable body all render an empty result.
func (s *Service) handlePDFUpload(w http.ResponseWriter, r *http.Request) {
	var page pdfPage

	err := s.parseBody(r)
	switch {
	case isTooLarge(err):
		writeTooLarge(w)
		return
	case err != nil:
		hlog.FromRequest(r).Debug().Err(err).Msg("Ignoring malformed upload")
	default:
		if r.MultipartForm != nil {
			defer func() { _ = r.MultipartForm.RemoveAll() }()
		}
		page.Extracted = s.extractUpload(r)
	}

	s.render(w, r, "pdf2text.html", page)
}

func (s *Service) extractUpload(r *http.Request) string {
	logger := hlog.FromRequest(r)

	file, header, err := r.FormFile("pdf_file")
	if err != nil {
		s.metrics.recordPDF(r.Context(), pdfOutcomeSkipped)
		return ""
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Warn().Err(err).Str("filename", header.Filename).Msg("Failed to read upload")
		s.metrics.recordPDF(r.Context(), pdfOutcomeFailed)
		return pdftext.FailSoft(err)
	}

	res := s.extractor.Extract(header.Filename, data)
	switch {
	case res.Skipped:
		logger.Debug().Str("filename", header.Filename).Msg("Skipping upload without .pdf suffix")
		s.metrics.recordPDF(r.Context(), pdfOutcomeSkipped)
		return ""
	case res.Err != nil:
		logger.Warn().Err(res.Err).Str("filename", header.Filename).Msg("Failed to parse PDF")
		s.metrics.recordPDF(r.Context(), pdfOutcomeFailed)
		return res.Text
	}

	logger.Debug().
		Str("filename", header.Filename).
		Int("bytes", len(data)).
		Int("chars", len(res.Text)).
		Msg("Extracted PDF text")
	s.metrics.recordPDF(r.Context(), pdfOutcomeOK)
	return res.Text
}

// handlePDFDownload returns extracted_text as a plain-text attachment, or
// redirects back to the extractor when there is nothing to download.
func (s *Service) handlePDFDownload(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	text := r.PostFormValue("extracted_text")
	if text == "" {
		http.Redirect(w, r, "/pdf2text", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": downloadName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(text)))
	_, _ = io.WriteString(w, text)
}
