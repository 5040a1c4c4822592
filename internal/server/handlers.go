package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"
)

// parseForm parses a url-encoded or multipart body, holding up to the upload
// limit in memory. It writes 413 or 400 and returns false on failure.
func (s *Service) parseForm(w http.ResponseWriter, r *http.Request) bool {
	err := s.parseBody(r)
	switch {
	case err == nil:
		return true
	case isTooLarge(err):
		writeTooLarge(w)
	default:
		hlog.FromRequest(r).Debug().Err(err).Msg("Malformed form body")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
	}
	return false
}

// parseBody parses the request form. A body that is not multipart is not
// an error. ParseForm runs first because ParseMultipartForm drops its error
// for url-encoded bodies.
func (s *Service) parseBody(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	err := r.ParseMultipartForm(s.config.MaxUploadBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
