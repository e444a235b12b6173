package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/carehub/internal/access"
	"github.com/hackgods/carehub/internal/catalog"
	"github.com/hackgods/carehub/internal/consultation"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/metrics"
	"github.com/hackgods/carehub/internal/profile"
	"github.com/hackgods/carehub/internal/provider"
)

type RouterConfig struct {
	Roles         *access.Registry
	Profiles      *profile.Service
	Entitlements  *profile.Entitlements
	Providers     *provider.Service
	Consultations *consultation.Service
	Fitness       *catalog.Service[catalog.FitnessListing]
	Memberships   *catalog.Service[catalog.MembershipPlan]

	Verifier *identity.Verifier
	// Limiter and Metrics are optional.
	Limiter  *RateLimiter
	Metrics  HTTPRecorder
	Gatherer prometheus.Gatherer

	// PgPool and Redis are pinged by the readiness probe when set.
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(LoggingMiddleware)
	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
	}

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(IdentityMiddleware(cfg.Verifier))
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}

		r.Get("/me/role", getRoleHandler(cfg.Roles))
		r.Get("/me/admin", isAdminHandler(cfg.Roles))
		r.Put("/roles/{caller}", assignRoleHandler(cfg.Roles))

		r.Get("/me/profile", getOwnProfileHandler(cfg.Profiles))
		r.Put("/me/profile", saveProfileHandler(cfg.Profiles, false))
		r.Get("/patients/me", getPatientProfileHandler(cfg.Profiles))
		r.Put("/patients/me", saveProfileHandler(cfg.Profiles, true))
		r.Get("/users/{caller}/profile", getUserProfileHandler(cfg.Profiles))

		r.Get("/me/vip", getVIPHandler(cfg.Entitlements))
		r.Put("/patients/{caller}/vip", setVIPHandler(cfg.Entitlements))

		r.Get("/providers", listProvidersHandler(cfg.Providers))
		r.Post("/providers", addProviderHandler(cfg.Providers))
		r.Get("/providers/{id}", getProviderHandler(cfg.Providers))

		r.Get("/consultations", listConsultationsHandler(cfg.Consultations))
		r.Post("/consultations", requestConsultationHandler(cfg.Consultations))
		r.Get("/consultations/{id}", getConsultationHandler(cfg.Consultations))
		r.Put("/consultations/{id}/status", updateConsultationStatusHandler(cfg.Consultations))
		r.Get("/consultations/{id}/events", consultationHistoryHandler(cfg.Consultations))

		r.Route("/fitness-listings", catalogHandlers[catalog.FitnessListing, FitnessListingDTO]{
			svc:     cfg.Fitness,
			fromDTO: fitnessFromDTO,
			toDTO:   fitnessToDTO,
		}.routes)
		r.Route("/membership-plans", catalogHandlers[catalog.MembershipPlan, MembershipPlanDTO]{
			svc:     cfg.Memberships,
			fromDTO: membershipFromDTO,
			toDTO:   membershipToDTO,
		}.routes)
	})

	return r
}
