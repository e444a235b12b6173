package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hackgods/carehub/internal/apperr"
	"github.com/hackgods/carehub/internal/identity"
	redisclient "github.com/hackgods/carehub/internal/redis"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// decodeJSON reads a single JSON object into dst. Failures are reported to
// the client and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON: "+err.Error())
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "body must contain a single JSON object")
		return false
	}
	return true
}

// handleError maps an operation failure onto a status code. Permission
// failures for anonymous callers become 401 so clients know to authenticate.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.Code(err)

	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeError(w, http.StatusBadRequest, code, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, code, err.Error())
	case errors.Is(err, apperr.ErrPermissionDenied):
		if identity.FromContext(r.Context()).IsAnonymous() {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "sign in to perform this operation")
			return
		}
		writeError(w, http.StatusForbidden, code, err.Error())
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(w, http.StatusConflict, code, err.Error())
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusServiceUnavailable, "store_busy", "store is busy, please retry shortly")
	default:
		log.Error().Err(err).
			Str("request_id", GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
