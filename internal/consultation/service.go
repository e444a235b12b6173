package consultation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hackgods/carehub/internal/access"
	"github.com/hackgods/carehub/internal/apperr"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/lock"
	"github.com/hackgods/carehub/internal/provider"
	"github.com/hackgods/carehub/internal/validate"
)

const (
	EventConsultationRequested = "CONSULTATION_REQUESTED"
	EventConsultationConfirmed = "CONSULTATION_CONFIRMED"
	EventConsultationCompleted = "CONSULTATION_COMPLETED"
	EventConsultationCancelled = "CONSULTATION_CANCELLED"
)

var statusEvents = map[Status]string{
	StatusConfirmed: EventConsultationConfirmed,
	StatusCompleted: EventConsultationCompleted,
	StatusCancelled: EventConsultationCancelled,
}

// ProviderLookup resolves a provider id. provider.Service satisfies it.
type ProviderLookup interface {
	Get(ctx context.Context, id string) (*provider.Provider, error)
}

// Publisher forwards lifecycle events outside the process.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Recorder receives lifecycle counters.
type Recorder interface {
	RecordConsultationRequested()
	RecordConsultationTransition(from, to string)
}

// Policy holds the transition rules that are a product decision rather than
// part of the state machine.
type Policy struct {
	// AllowPatientCancellation lets a patient cancel their own booking.
	// Otherwise only admins may change a consultation's status.
	AllowPatientCancellation bool
}

type Service struct {
	repo      Repository
	providers ProviderLookup
	guard     *access.Guard
	locker    lock.Locker
	policy    Policy
	publisher Publisher
	recorder  Recorder
	now       func() time.Time
}

type Option func(*Service)

func WithPolicy(p Policy) Option {
	return func(s *Service) { s.policy = p }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func NewService(repo Repository, providers ProviderLookup, guard *access.Guard, locker lock.Locker, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		providers: providers,
		guard:     guard,
		locker:    locker,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request books a new pending consultation for the caller and returns its id.
// Identical requests are not deduplicated; each creates its own record.
func (s *Service) Request(ctx context.Context, caller identity.Caller, req Request) (string, error) {
	if err := s.guard.Authorize(ctx, caller, access.CapRequestConsultation); err != nil {
		return "", err
	}
	if req.PatientID != caller {
		return "", apperr.PermissionDenied("%s cannot book for patient %s", caller, req.PatientID)
	}
	if err := validateRequest(req); err != nil {
		return "", err
	}

	// Provider existence and the insert are two separately serialized steps.
	if _, err := s.providers.Get(ctx, req.ProviderID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("load provider: %w", err)
	}

	now := s.now()
	c := Consultation{
		ID:         uuid.NewString(),
		PatientID:  req.PatientID,
		ProviderID: req.ProviderID,
		Time:       req.Time,
		Modality:   req.Modality,
		Notes:      req.Notes,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var ev EventLog
	err := s.locker.WithLock(ctx, lock.KeyConsultations, func(lockCtx context.Context) error {
		if err := s.repo.Create(lockCtx, c); err != nil {
			return fmt.Errorf("create consultation: %w", err)
		}

		ev = s.logEvent(lockCtx, c.ID, EventConsultationRequested, map[string]any{
			"patient_id":  string(c.PatientID),
			"provider_id": c.ProviderID,
			"time":        c.Time,
			"modality":    c.Modality,
		})
		return nil
	})
	if err != nil {
		return "", err
	}

	s.publish(ctx, ev)

	if s.recorder != nil {
		s.recorder.RecordConsultationRequested()
	}
	return c.ID, nil
}

func validateRequest(req Request) error {
	if req.Time <= 0 {
		return apperr.Validation("time must be a positive nanosecond timestamp")
	}
	return validate.First(
		validate.Required("provider_id", req.ProviderID),
		validate.Required("modality", req.Modality),
		validate.PlainText("modality", req.Modality),
		validate.PlainText("notes", req.Notes),
	)
}

// UpdateStatus moves a consultation along the lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, caller identity.Caller, id string, next Status) (*Consultation, error) {
	// Only a self-cancellation under the patient policy may proceed unprivileged.
	privileged := true
	if s.policy.AllowPatientCancellation && next == StatusCancelled {
		allowed, err := s.guard.Allows(ctx, caller, access.CapTransitionConsultation)
		if err != nil {
			return nil, err
		}
		privileged = allowed
	} else if err := s.guard.Authorize(ctx, caller, access.CapTransitionConsultation); err != nil {
		return nil, err
	}
	if _, err := ParseStatus(string(next)); err != nil {
		return nil, err
	}

	var (
		updated *Consultation
		ev      EventLog
	)
	err := s.locker.WithLock(ctx, lock.KeyConsultations, func(lockCtx context.Context) error {
		current, err := s.repo.Get(lockCtx, id)
		if err != nil {
			if errors.Is(err, ErrConsultationNotFound) {
				return apperr.NotFound("consultation", id)
			}
			return fmt.Errorf("load consultation: %w", err)
		}

		if !privileged && current.PatientID != caller {
			return apperr.PermissionDenied("%s cannot cancel consultation %s", caller, id)
		}
		if !current.Status.CanTransitionTo(next) {
			return apperr.InvalidTransition(string(current.Status), string(next))
		}

		updated, err = s.repo.UpdateStatus(lockCtx, id, current.Status, next)
		if err != nil {
			return fmt.Errorf("update consultation status: %w", err)
		}

		ev = s.logEvent(lockCtx, id, statusEvents[next], map[string]any{
			"from":   string(current.Status),
			"to":     string(next),
			"caller": caller.String(),
		})
		if s.recorder != nil {
			s.recorder.RecordConsultationTransition(string(current.Status), string(next))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, ev)
	return updated, nil
}

// ListForCaller returns every record to admins and the caller's own records
// to everyone else.
func (s *Service) ListForCaller(ctx context.Context, caller identity.Caller) ([]Consultation, error) {
	if caller.IsAnonymous() {
		return []Consultation{}, nil
	}

	admin, err := s.guard.Allows(ctx, caller, access.CapReadAnyConsultation)
	if err != nil {
		return nil, err
	}

	var list []Consultation
	if admin {
		list, err = s.repo.List(ctx)
	} else {
		list, err = s.repo.ListByPatient(ctx, caller)
	}
	if err != nil {
		return nil, fmt.Errorf("list consultations: %w", err)
	}
	return list, nil
}

// Get returns one consultation to its patient or an admin.
func (s *Service) Get(ctx context.Context, caller identity.Caller, id string) (*Consultation, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrConsultationNotFound) {
			return nil, apperr.NotFound("consultation", id)
		}
		return nil, fmt.Errorf("get consultation: %w", err)
	}
	if err := s.guard.AuthorizeSelfOr(ctx, caller, c.PatientID, access.CapReadAnyConsultation); err != nil {
		return nil, err
	}
	return c, nil
}

// History returns the lifecycle events recorded for one consultation.
func (s *Service) History(ctx context.Context, caller identity.Caller, id string) ([]EventLog, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list consultation events: %w", err)
	}
	return events, nil
}

// logEvent appends ev to the audit log and returns it for publication.
func (s *Service) logEvent(ctx context.Context, consultationID, eventType string, payload map[string]any) EventLog {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	ev := EventLog{
		EventType:      eventType,
		ConsultationID: consultationID,
		Payload:        data,
		CreatedAt:      s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Error().Err(err).
			Str("event", eventType).
			Str("consultation_id", consultationID).
			Msg("failed to insert event log")
	}

	log.Info().
		Str("event", eventType).
		Str("consultation_id", consultationID).
		Msg("consultation event")
	return ev
}

// publish is best-effort: failures are logged and never reach the caller.
func (s *Service) publish(ctx context.Context, ev EventLog) {
	if s.publisher == nil {
		return
	}

	msg, err := json.Marshal(map[string]any{
		"type":            ev.EventType,
		"consultation_id": ev.ConsultationID,
		"payload":         json.RawMessage(orEmptyObject(ev.Payload)),
		"created_at":      ev.CreatedAt,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, ev.ConsultationID, msg)
	}
	if err != nil {
		log.Warn().Err(err).
			Str("event", ev.EventType).
			Str("consultation_id", ev.ConsultationID).
			Msg("failed to publish event")
	}
}

func orEmptyObject(b []byte) []byte {
	if len(b) == 0 {
		return []byte("{}")
	}
	return b
}
