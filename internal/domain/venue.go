package domain

import (
	"context"
	"time"
)

// Venue is a room active on exactly one event day; time conflicts are checked per venue.
// swagger:model Venue
type Venue struct {
	ID          string    `json:"id"`
	EventDayID  string    `json:"event_day_id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Capacity    int       `json:"capacity"`
	Color       string    `json:"color"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewVenue returns a new active Venue. ID is typically set by the repository on create.
func NewVenue(eventDayID, name, displayName string, capacity int, color string, sortOrder int, createdAt, updatedAt time.Time) *Venue {
	return &Venue{
		EventDayID:  eventDayID,
		Name:        name,
		DisplayName: displayName,
		Capacity:    capacity,
		Color:       color,
		SortOrder:   sortOrder,
		IsActive:    true,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Label returns the display name, falling back to the name.
func (v *Venue) Label() string {
	if v.DisplayName != "" {
		return v.DisplayName
	}
	return v.Name
}

// VenueRepository defines storage for venues.
type VenueRepository interface {
	Create(ctx context.Context, venue *Venue) error
	GetByID(ctx context.Context, id string) (*Venue, error)
	ListByDayID(ctx context.Context, dayID string) ([]*Venue, error)
	CountSessions(ctx context.Context, venueID string) (int, error)
	Delete(ctx context.Context, id string) error
}
