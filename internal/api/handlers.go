package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/diagram"
	"github.com/starford/ansuz/internal/storage"
)

// SVGSource renders the current diagram as SVG. *render.Scene satisfies it.
type SVGSource interface {
	WriteSVG(w io.Writer) error
}

// Handler holds API route handlers.
type Handler struct {
	inst  *diagram.Instance
	trig  *diagram.Controller
	scene SVGSource
	store storage.Provider
	views *diagram.Registry
}

// NewHandler creates a new Handler.
func NewHandler(inst *diagram.Instance, trig *diagram.Controller, scene SVGSource, store storage.Provider, views *diagram.Registry) *Handler {
	return &Handler{inst: inst, trig: trig, scene: scene, store: store, views: views}
}

// docName derives a display name from a vault-relative path.
func docName(p string) string {
	return strings.TrimSuffix(path.Base(p), ".md")
}

// Diagram handles GET /api/diagram.svg, serving the current rendering.
func (h *Handler) Diagram(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := h.scene.WriteSVG(w); err != nil {
		slog.Error("render svg failed", slog.String("error", err.Error()))
	}
}

// ListDocuments handles GET /api/documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List("")
	if err != nil {
		slog.Error("list documents failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []storage.DocumentMeta{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": items,
		"total":     len(items),
	})
}

// OpenDocument handles POST /api/documents/open. The rebind happens
// asynchronously through the trigger controller.
func (h *Handler) OpenDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if _, err := h.store.Read(req.Path); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("open document failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	h.trig.DocumentOpened(req.Path, docName(req.Path))
	writeJSON(w, http.StatusAccepted, map[string]string{
		"path": req.Path,
		"name": docName(req.Path),
	})
}

// Pin handles POST /api/actions/pin.
func (h *Handler) Pin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json body"))
		return
	}
	h.trig.SetPinned(req.Pinned)
	writeJSON(w, http.StatusAccepted, map[string]bool{"pinned": req.Pinned})
}

// Screenshot handles POST /api/actions/screenshot.
func (h *Handler) Screenshot(w http.ResponseWriter, r *http.Request) {
	if err := h.inst.Screenshot(); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("screenshot failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "copied"})
}

// CollapseAll handles POST /api/actions/collapse-all.
func (h *Handler) CollapseAll(w http.ResponseWriter, r *http.Request) {
	h.inst.CollapseAll()
	w.WriteHeader(http.StatusNoContent)
}

// ToggleToolbar handles POST /api/actions/toolbar.
func (h *Handler) ToggleToolbar(w http.ResponseWriter, r *http.Request) {
	visible := h.inst.ToggleToolbar()
	writeJSON(w, http.StatusOK, map[string]bool{"visible": visible})
}

// RegisterView handles POST /api/views: the host announces an open view.
func (h *Handler) RegisterView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID    string `json:"id"`
		Type  string `json:"type"`
		Group string `json:"group"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json body"))
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	vt := diagram.ViewType(req.Type)
	if vt != diagram.ViewDiagram && vt != diagram.ViewDocument {
		writeJSON(w, http.StatusBadRequest, errorBody("type must be diagram or document"))
		return
	}
	h.views.Register(diagram.ViewInfo{ID: req.ID, Type: vt, Group: req.Group})
	w.WriteHeader(http.StatusNoContent)
}

// UnregisterView handles DELETE /api/views/{id}.
func (h *Handler) UnregisterView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	h.views.Unregister(id)
	w.WriteHeader(http.StatusNoContent)
}

// LinkGroup handles POST /api/views/link: link the diagram to the first
// diagram-type view of a group (empty group clears the link) and refresh.
func (h *Handler) LinkGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Group string `json:"group"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json body"))
		return
	}
	diagram.UpdateLinkedLeaf(h.views, req.Group, h.inst)

	if v, ok := h.inst.Companion(); ok {
		writeJSON(w, http.StatusOK, map[string]string{"companion": v.ID})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"companion": ""})
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	docPath, name := h.inst.Document()
	writeJSON(w, http.StatusOK, map[string]any{
		"document": docPath,
		"name":     name,
		"pinned":   h.inst.Pinned(),
		"toolbar":  h.inst.ToolbarVisible(),
	})
}
