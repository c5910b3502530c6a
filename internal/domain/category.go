package domain

import (
	"context"
	"time"
)

// ProgramSessionCategory is an event-scoped label for sessions. Name is unique within the event.
// swagger:model ProgramSessionCategory
type ProgramSessionCategory struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryRepository defines storage for session categories.
type CategoryRepository interface {
	// Create returns ErrDuplicate when the name is already used in the event.
	Create(ctx context.Context, c *ProgramSessionCategory) error
	GetByID(ctx context.Context, id string) (*ProgramSessionCategory, error)
	// ListByIDs returns the categories that exist among ids; missing ids are omitted.
	ListByIDs(ctx context.Context, ids []string) ([]*ProgramSessionCategory, error)
	ListByEventID(ctx context.Context, eventID string) ([]*ProgramSessionCategory, error)
	CountSessions(ctx context.Context, categoryID string) (int, error)
	Delete(ctx context.Context, id string) error
}
