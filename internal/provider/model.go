package provider

import (
	"time"

	"github.com/hackgods/carehub/internal/validate"
)

// Provider is a care provider directory entry. Entries are immutable once added.
type Provider struct {
	ID             string
	Name           string
	Specialization string
	Location       string
	Online         bool
	CreatedAt      time.Time
}

func (p Provider) Validate() error {
	return validate.First(
		validate.Required("id", p.ID),
		validate.Required("name", p.Name),
		validate.Required("specialization", p.Specialization),
		validate.Required("location", p.Location),
		validate.PlainText("name", p.Name),
		validate.PlainText("specialization", p.Specialization),
		validate.PlainText("location", p.Location),
	)
}
