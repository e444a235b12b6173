package api

import (
	"encoding/json"
	"time"

	"github.com/hackgods/carehub/internal/catalog"
	"github.com/hackgods/carehub/internal/consultation"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/profile"
	"github.com/hackgods/carehub/internal/provider"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type RoleResponse struct {
	Caller string `json:"caller"`
	Role   string `json:"role"`
}

type AdminResponse struct {
	IsAdmin bool `json:"is_admin"`
}

type AssignRoleRequest struct {
	Role string `json:"role"`
}

type ProfileRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Description string `json:"description"`
	Preferences string `json:"preferences"`
}

func (p ProfileRequest) toProfile() profile.Profile {
	return profile.Profile{
		OwnerID:     identity.Caller(p.ID),
		Name:        p.Name,
		Age:         p.Age,
		Description: p.Description,
		Preferences: p.Preferences,
	}
}

type ProfileResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Description string    `json:"description"`
	Preferences string    `json:"preferences"`
	IsVIP       bool      `json:"is_vip"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newProfileResponse(p *profile.Profile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		ID:          string(p.OwnerID),
		Name:        p.Name,
		Age:         p.Age,
		Description: p.Description,
		Preferences: p.Preferences,
		IsVIP:       p.IsVIP,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type VIPResponse struct {
	IsVIP bool `json:"is_vip"`
}

type SetVIPRequest struct {
	IsVIP bool `json:"is_vip"`
}

type ProviderDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Location       string `json:"location"`
	Online         bool   `json:"online"`
}

func (d ProviderDTO) toProvider() provider.Provider {
	return provider.Provider{
		ID:             d.ID,
		Name:           d.Name,
		Specialization: d.Specialization,
		Location:       d.Location,
		Online:         d.Online,
	}
}

func newProviderDTO(p provider.Provider) ProviderDTO {
	return ProviderDTO{
		ID:             p.ID,
		Name:           p.Name,
		Specialization: p.Specialization,
		Location:       p.Location,
		Online:         p.Online,
	}
}

type CreateConsultationRequest struct {
	PatientID  string `json:"patient_id,omitempty"`
	ProviderID string `json:"provider_id"`
	Time       int64  `json:"time"`
	Modality   string `json:"modality"`
	Notes      string `json:"notes"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ConsultationResponse struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	ProviderID string    `json:"provider_id"`
	Time       int64     `json:"time"`
	Modality   string    `json:"modality"`
	Notes      string    `json:"notes"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newConsultationResponse(c consultation.Consultation) ConsultationResponse {
	return ConsultationResponse{
		ID:         c.ID,
		PatientID:  string(c.PatientID),
		ProviderID: c.ProviderID,
		Time:       c.Time,
		Modality:   c.Modality,
		Notes:      c.Notes,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

type EventResponse struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type FitnessListingDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	TypeOfClass string  `json:"type_of_class"`
	Location    string  `json:"location"`
	Online      bool    `json:"online"`
	Cost        float64 `json:"cost"`
	Duration    float64 `json:"duration"`
}

func fitnessFromDTO(d FitnessListingDTO, id string) catalog.FitnessListing {
	if id != "" {
		d.ID = id
	}
	return catalog.FitnessListing(d)
}

func fitnessToDTO(f catalog.FitnessListing) FitnessListingDTO {
	return FitnessListingDTO(f)
}

type MembershipPlanDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    float64 `json:"duration"`
}

func membershipFromDTO(d MembershipPlanDTO, id string) catalog.MembershipPlan {
	if id != "" {
		d.ID = id
	}
	return catalog.MembershipPlan(d)
}

func membershipToDTO(m catalog.MembershipPlan) MembershipPlanDTO {
	return MembershipPlanDTO(m)
}
