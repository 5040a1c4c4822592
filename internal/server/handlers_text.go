package server

import (
	"net/http"

	"github.com/thebtf/webtools/internal/textutil"
)

type uppercasePage struct {
	Text   string
	Result string
}

// wordCountResponse fields are declared in sorted key order.
type wordCountResponse struct {
	Chars     int    `json:"chars"`
	Sentences int    `json:"sentences"`
	Text      string `json:"text"`
	Words     int    `json:"words"`
}

func (s *Service) handleUppercase(w http.ResponseWriter, r *http.Request) {
	var page uppercasePage
	if r.Method == http.MethodPost {
		if !s.parseForm(w, r) {
			return
		}
		page.Text = r.PostFormValue("text")
		page.Result = textutil.Uppercase(page.Text)
	}
	s.render(w, r, "uppercase.html", page)
}

func (s *Service) handleWordCounterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "wordcounter.html", nil)
}

func (s *Service) handleWordCount(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	text := r.PostFormValue("text")
	c := textutil.Count(text)
	writeJSON(w, r, http.StatusOK, wordCountResponse{
		Chars:     c.Chars,
		Sentences: c.Sentences,
		Text:      text,
		Words:     c.Words,
	})
}
