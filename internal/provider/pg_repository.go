package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

var _ Repository = (*PgRepository)(nil)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Specialization,
		&p.Location,
		&p.Online,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *PgRepository) Insert(ctx context.Context, p Provider) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO providers (id, name, specialization, location, online, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Name, p.Specialization, p.Location, p.Online, p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrProviderExists
		}
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

func (r *PgRepository) Get(ctx context.Context, id string) (*Provider, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialization, location, online, created_at
		FROM providers
		WHERE id = $1
	`, id)
	return scanProvider(row)
}

func (r *PgRepository) List(ctx context.Context) ([]Provider, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialization, location, online, created_at
		FROM providers
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
