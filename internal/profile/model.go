package profile

import (
	"time"

	"github.com/hackgods/carehub/internal/apperr"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/validate"
)

const MaxAge = 130

type Profile struct {
	OwnerID     identity.Caller
	Name        string
	Age         int
	Description string
	Preferences string
	IsVIP       bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the fields a caller may write.
func (p Profile) Validate() error {
	if err := validate.Required("name", p.Name); err != nil {
		return err
	}
	if p.Age <= 0 || p.Age > MaxAge {
		return apperr.Validation("age must be in (0, %d], got %d", MaxAge, p.Age)
	}
	return validate.First(
		validate.PlainText("name", p.Name),
		validate.PlainText("description", p.Description),
		validate.PlainText("preferences", p.Preferences),
	)
}
