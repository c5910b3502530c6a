package domain

import (
	"context"
	"time"
)

// SpeakerAssignment links a participant to a presentation with a role.
type SpeakerAssignment struct {
	ParticipantID string      `json:"participant_id"`
	Role          SpeakerRole `json:"role"`
	SortOrder     int         `json:"sort_order"`
}

// Presentation is a sub-item of a program session with its own speakers.
// swagger:model Presentation
type Presentation struct {
	ID        string              `json:"id"`
	SessionID string              `json:"session_id"`
	Title     string              `json:"title"`
	Abstract  *string             `json:"abstract"`
	Type      PresentationType    `json:"presentation_type"`
	StartTime ClockTime           `json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime   ClockTime           `json:"end_time" swaggertype:"string" example:"09:20"`
	Speakers  []SpeakerAssignment `json:"speakers"`
	SponsorID *string             `json:"sponsor_id"`
	SortOrder int                 `json:"sort_order"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Range returns the presentation's [start, end) interval.
func (p *Presentation) Range() TimeRange {
	return TimeRange{Start: p.StartTime, End: p.EndTime}
}

// PresentationInput is the create/update payload for a presentation.
type PresentationInput struct {
	Title     string
	Abstract  *string
	Type      PresentationType
	StartTime string
	EndTime   string
	Speakers  []SpeakerAssignment
	SponsorID *string
	SortOrder int
}

// PresentationReferences are the foreign references of a presentation.
type PresentationReferences struct {
	SponsorID *string
	Speakers  []SpeakerAssignment
}

// PresentationRepository defines storage for presentations and their speaker links.
type PresentationRepository interface {
	Create(ctx context.Context, p *Presentation) error
	Update(ctx context.Context, p *Presentation) error
	GetByID(ctx context.Context, id string) (*Presentation, error)
	ListBySessionID(ctx context.Context, sessionID string) ([]*Presentation, error)
	Delete(ctx context.Context, id string) error
}
