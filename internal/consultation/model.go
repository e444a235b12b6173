package consultation

import (
	"time"

	"github.com/hackgods/carehub/internal/apperr"
	"github.com/hackgods/carehub/internal/identity"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions is the whole lifecycle. Statuses missing from the map are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return st, nil
	default:
		return "", apperr.Validation("unknown consultation status %q", s)
	}
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type Consultation struct {
	ID         string
	PatientID  identity.Caller
	ProviderID string
	// Time is nanoseconds since the Unix epoch.
	Time      int64
	Modality  string
	Notes     string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Request struct {
	PatientID  identity.Caller
	ProviderID string
	Time       int64
	Modality   string
	Notes      string
}

type EventLog struct {
	ID             int64
	EventType      string
	ConsultationID string
	Payload        []byte
	CreatedAt      time.Time
}
