package access

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

func (r *PgRepository) GetAssignment(ctx context.Context, caller identity.Caller) (*Assignment, bool, error) {
	var a Assignment
	err := r.pool.QueryRow(ctx, `
		SELECT caller, role, updated_at
		FROM role_assignments
		WHERE caller = $1
	`, string(caller)).Scan(&a.Caller, &a.Role, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load role assignment: %w", err)
	}
	return &a, true, nil
}

func (r *PgRepository) SetAssignment(ctx context.Context, caller identity.Caller, role Role) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_assignments (caller, role, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (caller) DO UPDATE
		SET role = EXCLUDED.role,
		    updated_at = now()
	`, string(caller), string(role))
	if err != nil {
		return fmt.Errorf("upsert role assignment: %w", err)
	}
	return nil
}
