package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Table maps an item type onto a catalog table. Columns[0] must be the id
// column; Values must return arguments in Columns order.
type Table[T Item] struct {
	Name    string
	Columns []string
	Values  func(T) []any
	Scan    func(row pgx.Row) (T, error)
}

var FitnessTable = Table[FitnessListing]{
	Name:    "fitness_listings",
	Columns: []string{"id", "name", "type_of_class", "location", "online", "cost", "duration"},
	Values: func(f FitnessListing) []any {
		return []any{f.ID, f.Name, f.TypeOfClass, f.Location, f.Online, f.Cost, f.Duration}
	},
	Scan: func(row pgx.Row) (FitnessListing, error) {
		var f FitnessListing
		err := row.Scan(&f.ID, &f.Name, &f.TypeOfClass, &f.Location, &f.Online, &f.Cost, &f.Duration)
		return f, err
	},
}

var MembershipTable = Table[MembershipPlan]{
	Name:    "membership_plans",
	Columns: []string{"id", "name", "description", "price", "duration"},
	Values: func(m MembershipPlan) []any {
		return []any{m.ID, m.Name, m.Description, m.Price, m.Duration}
	},
	Scan: func(row pgx.Row) (MembershipPlan, error) {
		var m MembershipPlan
		err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Duration)
		return m, err
	},
}

var (
	_ Repository[FitnessListing] = (*PgRepository[FitnessListing])(nil)
	_ Repository[MembershipPlan] = (*PgRepository[MembershipPlan])(nil)
)

type PgRepository[T Item] struct {
	pool  *pgxpool.Pool
	table Table[T]
}

func NewPgRepository[T Item](pool *pgxpool.Pool, table Table[T]) *PgRepository[T] {
	return &PgRepository[T]{pool: pool, table: table}
}

func (r *PgRepository[T]) columns() string {
	return strings.Join(r.table.Columns, ", ")
}

func (r *PgRepository[T]) Insert(ctx context.Context, item T) error {
	placeholders := make([]string, len(r.table.Columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		r.table.Name, r.columns(), strings.Join(placeholders, ", "))

	if _, err := r.pool.Exec(ctx, query, r.table.Values(item)...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrItemExists
		}
		return fmt.Errorf("insert %s: %w", r.table.Name, err)
	}
	return nil
}

func (r *PgRepository[T]) Replace(ctx context.Context, item T) error {
	sets := make([]string, 0, len(r.table.Columns)-1)
	for i, col := range r.table.Columns[1:] {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s, updated_at = now() WHERE %s = $1`,
		r.table.Name, strings.Join(sets, ", "), r.table.Columns[0])

	tag, err := r.pool.Exec(ctx, query, r.table.Values(item)...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PgRepository[T]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, r.table.Name, r.table.Columns[0])

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.table.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PgRepository[T]) Get(ctx context.Context, id string) (T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.columns(), r.table.Name, r.table.Columns[0])

	item, err := r.table.Scan(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return item, ErrItemNotFound
		}
		return item, err
	}
	return item, nil
}

func (r *PgRepository[T]) List(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY seq`, r.columns(), r.table.Name)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		item, err := r.table.Scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
