package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/carehub/internal/access"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/profile"
)

func getRoleHandler(roles *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context())

		role, err := roles.GetRole(r.Context(), caller)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, RoleResponse{Caller: string(caller), Role: string(role)})
	}
}

func isAdminHandler(roles *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := roles.IsAdmin(r.Context(), identity.FromContext(r.Context()))
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, AdminResponse{IsAdmin: ok})
	}
}

func assignRoleHandler(roles *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AssignRoleRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		caller := identity.FromContext(r.Context())
		target := identity.Caller(chi.URLParam(r, "caller"))

		if err := roles.AssignRole(r.Context(), caller, target, access.Role(req.Role)); err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, RoleResponse{Caller: string(target), Role: req.Role})
	}
}

// getOwnProfileHandler answers with null when the caller has no profile yet.
func getOwnProfileHandler(profiles *profile.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := profiles.GetOwn(r.Context(), identity.FromContext(r.Context()))
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, newProfileResponse(p))
	}
}

func getPatientProfileHandler(profiles *profile.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := profiles.GetPatientProfile(r.Context(), identity.FromContext(r.Context()))
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, newProfileResponse(p))
	}
}

// saveProfileHandler backs both profile save routes. The patient route
// requires the body id to name the caller; the caller route stamps it.
func saveProfileHandler(profiles *profile.Service, requireID bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProfileRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		caller := identity.FromContext(r.Context())
		in := req.toProfile()
		if !requireID {
			in.OwnerID = caller
		} else if in.OwnerID.IsAnonymous() {
			writeError(w, http.StatusBadRequest, "validation_error", "id is required")
			return
		}

		if err := profiles.Save(r.Context(), caller, in); err != nil {
			handleError(w, r, err)
			return
		}

		saved, err := profiles.GetOwn(r.Context(), caller)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newProfileResponse(saved))
	}
}

func getUserProfileHandler(profiles *profile.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context())
		target := identity.Caller(chi.URLParam(r, "caller"))

		p, err := profiles.GetByIdentity(r.Context(), caller, target)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if p == nil {
			writeError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}

		writeJSON(w, http.StatusOK, newProfileResponse(p))
	}
}

func getVIPHandler(ent *profile.Entitlements) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vip, err := ent.VIPStatus(r.Context(), identity.FromContext(r.Context()))
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, VIPResponse{IsVIP: vip})
	}
}

func setVIPHandler(ent *profile.Entitlements) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetVIPRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		caller := identity.FromContext(r.Context())
		target := identity.Caller(chi.URLParam(r, "caller"))

		if err := ent.SetVIP(r.Context(), caller, target, req.IsVIP); err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, VIPResponse{IsVIP: req.IsVIP})
	}
}
