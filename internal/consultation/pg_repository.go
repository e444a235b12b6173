package consultation

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const consultationColumns = `id, patient_id, provider_id, time_ns, modality, notes, status, created_at, updated_at`

func scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation

	err := row.Scan(
		&c.ID,
		&c.PatientID,
		&c.ProviderID,
		&c.Time,
		&c.Modality,
		&c.Notes,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (r *PgRepository) Create(ctx context.Context, c Consultation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO consultations (`+consultationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, c.ID, string(c.PatientID), c.ProviderID, c.Time, c.Modality, c.Notes, string(c.Status), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert consultation: %w", err)
	}
	return nil
}

func (r *PgRepository) Get(ctx context.Context, id string) (*Consultation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+consultationColumns+`
		FROM consultations
		WHERE id = $1
	`, id)
	return scanConsultation(row)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (*Consultation, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE consultations
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+consultationColumns, id, string(to), string(from))

	c, err := scanConsultation(row)
	if errors.Is(err, ErrConsultationNotFound) {
		if _, getErr := r.Get(ctx, id); getErr == nil {
			return nil, ErrStatusChanged
		}
	}
	return c, err
}

func (r *PgRepository) List(ctx context.Context) ([]Consultation, error) {
	return r.query(ctx, `
		SELECT `+consultationColumns+`
		FROM consultations
		ORDER BY seq
	`)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patient identity.Caller) ([]Consultation, error) {
	return r.query(ctx, `
		SELECT `+consultationColumns+`
		FROM consultations
		WHERE patient_id = $1
		ORDER BY seq
	`, string(patient))
}

func (r *PgRepository) query(ctx context.Context, sql string, args ...any) ([]Consultation, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Consultation{}
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO consultation_events (event_type, consultation_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.ConsultationID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func (r *PgRepository) ListEvents(ctx context.Context, consultationID string) ([]EventLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_type, consultation_id, payload, created_at
		FROM consultation_events
		WHERE consultation_id = $1
		ORDER BY id
	`, consultationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []EventLog{}
	for rows.Next() {
		var ev EventLog
		if err := rows.Scan(&ev.ID, &ev.EventType, &ev.ConsultationID, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, ev)
	}

	return result, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
