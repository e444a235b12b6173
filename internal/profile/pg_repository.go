package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/carehub/internal/identity"
)

var _ Repository = (*PgRepository)(nil)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile

	err := row.Scan(
		&p.OwnerID,
		&p.Name,
		&p.Age,
		&p.Description,
		&p.Preferences,
		&p.IsVIP,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *PgRepository) Get(ctx context.Context, owner identity.Caller) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT owner_id, name, age, description, preferences, is_vip, created_at, updated_at
		FROM patient_profiles
		WHERE owner_id = $1
	`, string(owner))
	return scanProfile(row)
}

func (r *PgRepository) Upsert(ctx context.Context, p Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient_profiles (owner_id, name, age, description, preferences, is_vip, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id) DO UPDATE
		SET name = EXCLUDED.name,
		    age = EXCLUDED.age,
		    description = EXCLUDED.description,
		    preferences = EXCLUDED.preferences,
		    is_vip = EXCLUDED.is_vip,
		    updated_at = EXCLUDED.updated_at
	`, string(p.OwnerID), p.Name, p.Age, p.Description, p.Preferences, p.IsVIP, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *PgRepository) SetVIP(ctx context.Context, owner identity.Caller, isVIP bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patient_profiles
		SET is_vip = $2,
		    updated_at = now()
		WHERE owner_id = $1
	`, string(owner), isVIP)
	if err != nil {
		return fmt.Errorf("set vip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
