package server

import (
	"net/http"

	"github.com/thebtf/webtools/internal/quotes"
)

type quotesPage struct {
	Quotes []string
}

func (s *Service) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", nil)
}

func (s *Service) handleQuotes(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "quotes.html", quotesPage{Quotes: quotes.All()})
}
