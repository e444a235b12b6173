package access

import (
	"time"

	"github.com/hackgods/carehub/internal/apperr"
	"github.com/hackgods/carehub/internal/identity"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUser, RoleGuest:
		return r, nil
	default:
		return "", apperr.Validation("unknown role %q", s)
	}
}

// Capability names an action the guard can grant.
type Capability string

const (
	CapManageRoles            Capability = "manage:roles"
	CapManageProviders        Capability = "manage:providers"
	CapManageCatalog          Capability = "manage:catalog"
	CapManageEntitlements     Capability = "manage:entitlements"
	CapTransitionConsultation Capability = "transition:consultation"
	CapReadAnyProfile         Capability = "read:any_profile"
	CapReadAnyConsultation    Capability = "read:any_consultation"
	CapSaveProfile            Capability = "save:profile"
	CapRequestConsultation    Capability = "request:consultation"
)

// Policy lists the roles granted each capability. Admin is always granted.
type Policy map[Capability][]Role

func DefaultPolicy() Policy {
	return Policy{
		CapManageRoles:            {RoleAdmin},
		CapManageProviders:        {RoleAdmin},
		CapManageCatalog:          {RoleAdmin},
		CapManageEntitlements:     {RoleAdmin},
		CapTransitionConsultation: {RoleAdmin},
		CapReadAnyProfile:         {RoleAdmin},
		CapReadAnyConsultation:    {RoleAdmin},
		CapSaveProfile:            {RoleAdmin, RoleUser},
		CapRequestConsultation:    {RoleAdmin, RoleUser},
	}
}

type Assignment struct {
	Caller    identity.Caller
	Role      Role
	UpdatedAt time.Time
}
