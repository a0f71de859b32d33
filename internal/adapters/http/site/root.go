// Package site serves the embedded activities front-end.
package site

import (
	"bytes"
	"context"
	"net/http"
	"time"
)

// IndexPath is where the front-end page lives.
const IndexPath = "/static/index.html"

// Register attaches the front-end routes to mux.
//
//	GET /                  -> 307 to /static/index.html
//	GET /static/index.html -> embedded page
//	GET /static/*          -> embedded script and stylesheet
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	root := NewRootHandler()
	mux.HandleFunc("GET /{$}", root.HandleRoot)
	// http.FileServer redirects */index.html to the directory, so the page
	// gets its own route.
	mux.HandleFunc("GET "+IndexPath, root.HandleIndex)
	mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServer(FS())))
}

// RootHandler serves the entry points of the front-end.
type RootHandler struct {
	index []byte
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	index, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		panic("embedded index.html missing: " + err.Error())
	}
	return &RootHandler{index: index}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
}

// HandleIndex handles GET /static/index.html requests.
func (h *RootHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", time.Time{}, bytes.NewReader(h.index))
}
