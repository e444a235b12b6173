package api

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hackgods/carehub/internal/identity"
)

type contextKey string

const (
	requestIDKey    contextKey = "request_id"
	requestStateKey contextKey = "request_state"
)

// requestState is filled in by inner middleware and read by the access log.
type requestState struct {
	caller identity.Caller
}

// RequestIDMiddleware adds a unique request ID to each request context
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				var stack [4096]byte
				n := runtime.Stack(stack[:], false)

				log.Error().
					Str("request_id", GetRequestID(r.Context())).
					Interface("panic", rec).
					Str("stack", string(stack[:n])).
					Msg("panic recovered")

				writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware writes one access log line per request. The level rises
// to warn for 4xx and error for 5xx responses.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		state := &requestState{}
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), requestStateKey, state)))

		evt := log.Info()
		switch {
		case wrapped.statusCode >= 500:
			evt = log.Error()
		case wrapped.statusCode >= 400:
			evt = log.Warn()
		}

		evt.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Str("request_id", GetRequestID(r.Context())).
			Str("caller", state.caller.String()).
			Msg("http request")
	})
}

// HTTPRecorder receives per-request measurements.
type HTTPRecorder interface {
	RecordHTTPRequest(route, method string, status int, elapsed time.Duration)
}

// MetricsMiddleware labels requests by chi route pattern so path parameters
// do not explode label cardinality.
func MetricsMiddleware(rec HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			rec.RecordHTTPRequest(route, r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}

// IdentityMiddleware resolves the bearer token into a caller. Requests
// without an Authorization header run as the anonymous caller; a header that
// does not verify is rejected.
func IdentityMiddleware(v *identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := identity.Anonymous

			if header := r.Header.Get("Authorization"); header != "" {
				raw, ok := strings.CutPrefix(header, "Bearer ")
				if !ok {
					writeError(w, http.StatusUnauthorized, "unauthenticated", "authorization header must use the Bearer scheme")
					return
				}
				c, err := v.Verify(strings.TrimSpace(raw))
				if err != nil {
					writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid bearer token")
					return
				}
				caller = c
			}

			if state, ok := r.Context().Value(requestStateKey).(*requestState); ok {
				state.caller = caller
			}

			next.ServeHTTP(w, r.WithContext(identity.WithCaller(r.Context(), caller)))
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}
