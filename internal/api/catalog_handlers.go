package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/carehub/internal/catalog"
	"github.com/hackgods/carehub/internal/identity"
)

// catalogHandlers serves one catalog. fromDTO builds an item, taking id from
// the path when it is non-empty.
type catalogHandlers[T catalog.Item, D any] struct {
	svc     *catalog.Service[T]
	fromDTO func(d D, id string) T
	toDTO   func(T) D
}

func (h catalogHandlers[T, D]) routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h catalogHandlers[T, D]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := make([]D, 0, len(items))
	for _, item := range items {
		resp = append(resp, h.toDTO(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h catalogHandlers[T, D]) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toDTO(item))
}

func (h catalogHandlers[T, D]) add(w http.ResponseWriter, r *http.Request) {
	var req D
	if !decodeJSON(w, r, &req) {
		return
	}

	item := h.fromDTO(req, "")
	if err := h.svc.Add(r.Context(), identity.FromContext(r.Context()), item); err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toDTO(item))
}

func (h catalogHandlers[T, D]) update(w http.ResponseWriter, r *http.Request) {
	var req D
	if !decodeJSON(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	if bodyID := h.fromDTO(req, "").ItemID(); bodyID != "" && bodyID != id {
		writeError(w, http.StatusBadRequest, "validation_error",
			fmt.Sprintf("body id %q does not match path id %q", bodyID, id))
		return
	}

	item := h.fromDTO(req, id)
	if err := h.svc.Update(r.Context(), identity.FromContext(r.Context()), item); err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toDTO(item))
}

func (h catalogHandlers[T, D]) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
