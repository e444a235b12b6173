package consultation

import (
	"errors"
	"testing"

	"github.com/hackgods/carehub/internal/apperr"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = false", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed} {
		if s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = true", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("confirmed"); err != nil || s != StatusConfirmed {
		t.Errorf("ParseStatus(confirmed) = %q, %v", s, err)
	}
	if _, err := ParseStatus("rescheduled"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("ParseStatus(rescheduled) error = %v, want validation", err)
	}
}
