// Package app wires configuration into a running carehub: stores, locks,
// services, event publication, metrics and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/hackgods/carehub/internal/access"
	"github.com/hackgods/carehub/internal/api"
	"github.com/hackgods/carehub/internal/catalog"
	"github.com/hackgods/carehub/internal/config"
	"github.com/hackgods/carehub/internal/consultation"
	"github.com/hackgods/carehub/internal/db"
	"github.com/hackgods/carehub/internal/events"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/lock"
	"github.com/hackgods/carehub/internal/metrics"
	"github.com/hackgods/carehub/internal/profile"
	"github.com/hackgods/carehub/internal/provider"
	redisclient "github.com/hackgods/carehub/internal/redis"
)

const Version = "0.1.0"

type App struct {
	Roles         *access.Registry
	Profiles      *profile.Service
	Entitlements  *profile.Entitlements
	Providers     *provider.Service
	Consultations *consultation.Service
	Fitness       *catalog.Service[catalog.FitnessListing]
	Memberships   *catalog.Service[catalog.MembershipPlan]

	Verifier *identity.Verifier
	Metrics  *metrics.Collector
	Registry *prometheus.Registry
	Handler  http.Handler

	pool      *pgxpool.Pool
	redis     *redis.Client
	publisher *events.KafkaPublisher
}

// stores groups one repository per store for the selected backend.
type stores struct {
	roles         access.Repository
	profiles      profile.Repository
	providers     provider.Repository
	consultations consultation.Repository
	fitness       catalog.Repository[catalog.FitnessListing]
	memberships   catalog.Repository[catalog.MembershipPlan]
}

func memoryStores() stores {
	return stores{
		roles:         access.NewMemoryRepository(),
		profiles:      profile.NewMemoryRepository(),
		providers:     provider.NewMemoryRepository(),
		consultations: consultation.NewMemoryRepository(),
		fitness:       catalog.NewMemoryRepository[catalog.FitnessListing](),
		memberships:   catalog.NewMemoryRepository[catalog.MembershipPlan](),
	}
}

func pgStores(pool *pgxpool.Pool) stores {
	return stores{
		roles:         access.NewPgRepository(pool),
		profiles:      profile.NewPgRepository(pool),
		providers:     provider.NewPgRepository(pool),
		consultations: consultation.NewPgRepository(pool),
		fitness:       catalog.NewPgRepository(pool, catalog.FitnessTable),
		memberships:   catalog.NewPgRepository(pool, catalog.MembershipTable),
	}
}

// New connects the configured backends and builds the application. Callers
// must Close the result.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{}

	st := memoryStores()
	if cfg.StoreBackend == config.BackendPostgres {
		pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.pool = pool
		st = pgStores(pool)
	}

	var locker lock.Locker = lock.NewLocal()
	if cfg.LockBackend == config.LockRedis {
		rdb, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = rdb
		locker = redisclient.NewRedisStoreLocker(rdb, cfg.LockTTL, cfg.LockWait)
	}

	var consultationOpts []consultation.Option
	if len(cfg.KafkaBrokers) > 0 {
		pub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create kafka publisher: %w", err)
		}
		a.publisher = pub
		consultationOpts = append(consultationOpts, consultation.WithPublisher(pub))
	}

	a.build(cfg, st, locker, consultationOpts...)
	return a, nil
}

// NewInMemory builds an application on memory stores and a local locker.
// It never touches the network.
func NewInMemory(cfg config.Config) *App {
	a := &App{}
	a.build(cfg, memoryStores(), lock.NewLocal())
	return a
}

func (a *App) build(cfg config.Config, st stores, locker lock.Locker, opts ...consultation.Option) {
	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.NewCollector(a.Registry)

	a.Roles = access.NewRegistry(st.roles, locker, identity.Caller(cfg.BootstrapAdmin),
		access.WithDenialRecorder(a.Metrics))
	guard := a.Roles.Guard()

	a.Profiles = profile.NewService(st.profiles, guard, locker)
	a.Entitlements = profile.NewEntitlements(st.profiles, guard, locker)
	a.Providers = provider.NewService(st.providers, guard, locker)
	a.Fitness = catalog.NewFitnessService(st.fitness, guard, locker)
	a.Memberships = catalog.NewMembershipService(st.memberships, guard, locker)

	opts = append(opts,
		consultation.WithPolicy(consultation.Policy{AllowPatientCancellation: cfg.AllowPatientCancellation}),
		consultation.WithRecorder(a.Metrics),
	)
	a.Consultations = consultation.NewService(st.consultations, a.Providers, guard, locker, opts...)

	a.Verifier = identity.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience)

	var limiter *api.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	a.Handler = api.NewRouter(api.RouterConfig{
		Roles:         a.Roles,
		Profiles:      a.Profiles,
		Entitlements:  a.Entitlements,
		Providers:     a.Providers,
		Consultations: a.Consultations,
		Fitness:       a.Fitness,
		Memberships:   a.Memberships,
		Verifier:      a.Verifier,
		Limiter:       limiter,
		Metrics:       a.Metrics,
		Gatherer:      a.Registry,
		PgPool:        a.pool,
		Redis:         a.redis,
		Env:           cfg.Env,
		Version:       Version,
	})

	log.Info().
		Str("store_backend", cfg.StoreBackend).
		Str("lock_backend", cfg.LockBackend).
		Bool("kafka", a.publisher != nil).
		Bool("patient_cancellation", cfg.AllowPatientCancellation).
		Msg("carehub assembled")
}

// Close releases every external connection. It is safe to call on a
// partially built App.
func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka publisher: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}
