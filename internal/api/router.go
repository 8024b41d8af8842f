package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/diagram"
	"github.com/starford/ansuz/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(inst *diagram.Instance, trig *diagram.Controller, scene SVGSource, store storage.Provider, views *diagram.Registry, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(inst, trig, scene, store, views)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Rendering.
	r.Get("/diagram.svg", h.Diagram)
	r.Get("/status", h.Status)

	// Vault documents.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents/open", h.OpenDocument)

	// User actions.
	r.Post("/actions/pin", h.Pin)
	r.Post("/actions/screenshot", h.Screenshot)
	r.Post("/actions/collapse-all", h.CollapseAll)
	r.Post("/actions/toolbar", h.ToggleToolbar)

	// Host views and group linking.
	r.Post("/views", h.RegisterView)
	r.Delete("/views/{id}", h.UnregisterView)
	r.Post("/views/link", h.LinkGroup)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
