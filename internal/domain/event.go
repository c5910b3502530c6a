package domain

import (
	"context"
	"time"
)

// Event represents a multi-day conference owned by an organization.
// StartDate and EndDate are inclusive calendar dates (midnight UTC).
// swagger:model Event
type Event struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(organizationID, name string, startDate, endDate, createdAt, updatedAt time.Time) *Event {
	return &Event{
		OrganizationID: organizationID,
		Name:           name,
		StartDate:      DateOf(startDate),
		EndDate:        DateOf(endDate),
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// ContainsDate reports whether d falls within [StartDate, EndDate].
func (e *Event) ContainsDate(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(e.StartDate)) && !d.After(DateOf(e.EndDate))
}

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// EventRepository defines the interface for event storage. Events are owned
// by the surrounding CRUD application; the scheduler only reads them.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
}
