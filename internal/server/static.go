package server

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed static/* templates/*
var assetsFS embed.FS

// staticSubFS is the static subdirectory filesystem
var staticSubFS fs.FS

func init() {
	var err error
	staticSubFS, err = fs.Sub(assetsFS, "static")
	if err != nil {
		panic("failed to create sub filesystem: " + err.Error())
	}
}

// serveStatic serves embedded assets under /static/.
func serveStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/static/")
	if name == "" || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}

	content, err := fs.ReadFile(staticSubFS, name)
	if err != nil {
		http.Error(w, "Asset not found", http.StatusNotFound)
		return
	}

	switch path.Ext(name) {
	case ".js":
		w.Header().Set("Content-Type", "application/javascript")
	case ".css":
		w.Header().Set("Content-Type", "text/css")
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(content)
}
