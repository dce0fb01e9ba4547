// Package site handles the service landing page.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("site serve failed")
)

const landingHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Podium</title>
  </head>
  <body>
    <h1>Podium</h1>
    <p>Fitness-test video moderation and analytics.</p>
    <ul>
      <li><a href="/api-docs">API documentation</a></li>
      <li><a href="/analytics">Dashboard JSON</a></li>
      <li><a href="/stats">Service stats</a></li>
      <li><a href="/healthz">Metrics</a></li>
    </ul>
  </body>
</html>`

// Register attaches the landing page to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/", NewRootHandler().HandleRoot)
}

// RootHandler handles root path requests.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot serves the landing page at exactly /. Anything else that
// falls through to the catch-all pattern is a 404.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(landingHTML))
}
