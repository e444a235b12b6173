package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/provider"
)

func addProviderHandler(svc *provider.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProviderDTO
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := svc.Add(r.Context(), identity.FromContext(r.Context()), req.toProvider()); err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, req)
	}
}

func getProviderHandler(svc *provider.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, newProviderDTO(*p))
	}
}

func listProvidersHandler(svc *provider.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := make([]ProviderDTO, 0, len(list))
		for _, p := range list {
			resp = append(resp, newProviderDTO(p))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
