package domain

import (
	"context"
	"time"
)

// EventDay is one calendar date within an event's span. Date is unique per event.
// swagger:model EventDay
type EventDay struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEventDay returns a new active EventDay. ID is typically set by the repository on create.
func NewEventDay(eventID string, date time.Time, title string, sortOrder int, createdAt, updatedAt time.Time) *EventDay {
	return &EventDay{
		EventID:   eventID,
		Date:      DateOf(date),
		Title:     title,
		SortOrder: sortOrder,
		IsActive:  true,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// GenerateDaysOptions controls bulk day generation for an event.
type GenerateDaysOptions struct {
	Strategy     DayGenerationStrategy
	CustomDates  []time.Time
	TitleFormat  DayTitleFormat
	CustomTitles []string
}

// GeneratedDay is one date produced by the day generator, before persistence.
// SortOrder is the 1-based position among the dates considered in the run.
type GeneratedDay struct {
	Date      time.Time
	Title     string
	SortOrder int
}

// EventDayRepository defines storage for event days.
type EventDayRepository interface {
	Create(ctx context.Context, day *EventDay) error
	// CreateMany inserts all days in one transaction.
	CreateMany(ctx context.Context, days []*EventDay) error
	GetByID(ctx context.Context, id string) (*EventDay, error)
	ListByEventID(ctx context.Context, eventID string) ([]*EventDay, error)
	// RenumberByDate rewrites sort_order of every day of the event as its
	// 1-based position in ascending date order.
	RenumberByDate(ctx context.Context, eventID string) error
	// CountSessions counts program sessions in all venues of the day.
	CountSessions(ctx context.Context, dayID string) (int, error)
	// Delete removes the day and its (empty) venues in one transaction.
	Delete(ctx context.Context, id string) error
}
