package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hackgods/carehub/internal/catalog"
	"github.com/hackgods/carehub/internal/config"
	"github.com/hackgods/carehub/internal/db"
	"github.com/hackgods/carehub/internal/logger"
	"github.com/hackgods/carehub/internal/provider"
)

const (
	providerCount   = 50
	fitnessCount    = 30
	membershipCount = 6
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	logger.New(os.Stdout, cfg.LogLevel, cfg.Env)

	if cfg.PostgresDSN == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	faker := gofakeit.New(0)
	seedCtx := context.Background()

	if err := seedProviders(seedCtx, provider.NewPgRepository(pool), faker, providerCount); err != nil {
		log.Fatal().Err(err).Msg("seed providers")
	}
	if err := seedFitness(seedCtx, catalog.NewPgRepository(pool, catalog.FitnessTable), faker, fitnessCount); err != nil {
		log.Fatal().Err(err).Msg("seed fitness listings")
	}
	if err := seedMemberships(seedCtx, catalog.NewPgRepository(pool, catalog.MembershipTable), faker, membershipCount); err != nil {
		log.Fatal().Err(err).Msg("seed membership plans")
	}

	log.Info().Msg("seed complete")
}

var specializations = []string{
	"Nutrition",
	"Physiotherapy",
	"Cardiology",
	"General Practice",
	"Sports Medicine",
	"Endocrinology",
	"Psychology",
	"Dermatology",
}

func seedProviders(ctx context.Context, repo provider.Repository, faker *gofakeit.Faker, count int) error {
	log.Info().Int("count", count).Msg("seeding providers")

	for i := 0; i < count; i++ {
		p := provider.Provider{
			ID:             "prov-" + uuid.NewString()[:8],
			Name:           "Dr. " + faker.Name(),
			Specialization: specializations[faker.Number(0, len(specializations)-1)],
			Location:       faker.City(),
			Online:         faker.Bool(),
			CreatedAt:      time.Now(),
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if err := repo.Insert(ctx, p); err != nil {
			if errors.Is(err, provider.ErrProviderExists) {
				continue
			}
			return err
		}
	}

	log.Info().Msg("providers seeded")
	return nil
}

var classTypes = []string{"Yoga", "Pilates", "HIIT", "Spin", "Boxing", "Swimming", "Strength"}

func seedFitness(ctx context.Context, repo catalog.Repository[catalog.FitnessListing], faker *gofakeit.Faker, count int) error {
	log.Info().Int("count", count).Msg("seeding fitness listings")

	for i := 0; i < count; i++ {
		class := classTypes[faker.Number(0, len(classTypes)-1)]
		f := catalog.FitnessListing{
			ID:          "fit-" + uuid.NewString()[:8],
			Name:        class + " with " + faker.FirstName(),
			TypeOfClass: class,
			Location:    faker.City(),
			Online:      faker.Bool(),
			Cost:        faker.Price(5, 40),
			Duration:    float64(faker.Number(3, 12) * 10),
		}
		if err := insertItem(ctx, repo, f); err != nil {
			return err
		}
	}

	log.Info().Msg("fitness listings seeded")
	return nil
}

var planTiers = []string{"Basic", "Silver", "Gold", "Platinum", "Family", "Student"}

func seedMemberships(ctx context.Context, repo catalog.Repository[catalog.MembershipPlan], faker *gofakeit.Faker, count int) error {
	log.Info().Int("count", count).Msg("seeding membership plans")

	for i := 0; i < count; i++ {
		tier := planTiers[i%len(planTiers)]
		m := catalog.MembershipPlan{
			ID:          "plan-" + uuid.NewString()[:8],
			Name:        tier,
			Description: tier + " access to " + faker.Company() + " partner gyms",
			Price:       faker.Price(10, 120),
			Duration:    float64(faker.Number(1, 12) * 30),
		}
		if err := insertItem(ctx, repo, m); err != nil {
			return err
		}
	}

	log.Info().Msg("membership plans seeded")
	return nil
}

func insertItem[T catalog.Item](ctx context.Context, repo catalog.Repository[T], item T) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if err := repo.Insert(ctx, item); err != nil && !errors.Is(err, catalog.ErrItemExists) {
		return err
	}
	return nil
}
