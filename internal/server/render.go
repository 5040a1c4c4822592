package server

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/hlog"
)

// pageNames lists the page templates; each is parsed together with the layout.
var pageNames = []string{
	"index.html",
	"uppercase.html",
	"wordcounter.html",
	"pdf2text.html",
	"habit.html",
	"quotes.html",
}

func loadPages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).ParseFS(assetsFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// templateFiles lists the embedded template files.
func templateFiles() ([]string, error) {
	return fs.Glob(assetsFS, "templates/*.html")
}

// render executes a page into a buffer first so a template error never
// produces a half-written page.
func (s *Service) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		hlog.FromRequest(r).Error().Str("template", name).Msg("Unknown template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
