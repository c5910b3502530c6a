package domain

import (
	"context"
	"strings"
)

// Participant is a person (speaker, moderator) registered with an organization.
// swagger:model Participant
type Participant struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
}

// FullName joins first and last name.
func (p *Participant) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Sponsor is an organization-scoped sponsor that can be attached to sessions and presentations.
// swagger:model Sponsor
type Sponsor struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
}

// ParticipantRepository reads participants owned by the CRUD application.
type ParticipantRepository interface {
	// ListByIDs returns the participants that exist among ids; missing ids are omitted.
	ListByIDs(ctx context.Context, ids []string) ([]*Participant, error)
}

// SponsorRepository reads sponsors owned by the CRUD application.
type SponsorRepository interface {
	GetByID(ctx context.Context, id string) (*Sponsor, error)
}
