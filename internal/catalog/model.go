// Package catalog holds the fitness listing and membership plan catalogs.
// Both share one CRUD contract, parameterized by item type.
package catalog

import (
	"github.com/hackgods/carehub/internal/validate"
)

// Item is a catalog entry with a caller-supplied, catalog-unique id.
type Item interface {
	ItemID() string
	Validate() error
}

type FitnessListing struct {
	ID          string
	Name        string
	TypeOfClass string
	Location    string
	Online      bool
	Cost        float64
	Duration    float64
}

func (f FitnessListing) ItemID() string { return f.ID }

func (f FitnessListing) Validate() error {
	return validate.First(
		validate.Required("id", f.ID),
		validate.Required("name", f.Name),
		validate.PlainText("name", f.Name),
		validate.PlainText("type_of_class", f.TypeOfClass),
		validate.PlainText("location", f.Location),
		validate.NonNegative("cost", f.Cost),
		validate.NonNegative("duration", f.Duration),
	)
}

type MembershipPlan struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Duration    float64
}

func (m MembershipPlan) ItemID() string { return m.ID }

func (m MembershipPlan) Validate() error {
	return validate.First(
		validate.Required("id", m.ID),
		validate.Required("name", m.Name),
		validate.PlainText("name", m.Name),
		validate.PlainText("description", m.Description),
		validate.NonNegative("price", m.Price),
		validate.NonNegative("duration", m.Duration),
	)
}
