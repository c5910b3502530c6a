package domain

import (
	"context"
	"time"
)

// Session limits.
const (
	MinSessionMinutes = 15
	MaxSessionMinutes = 480
	MaxCategories     = 5
	MaxModerators     = 3
	MaxSpeakers       = 10
)

// ProgramSession is the time-bounded occupancy of a venue. Start and end are
// wall-clock times on the venue's day.
// swagger:model ProgramSession
type ProgramSession struct {
	ID           string      `json:"id"`
	VenueID      string      `json:"venue_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	StartTime    ClockTime   `json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime      ClockTime   `json:"end_time" swaggertype:"string" example:"10:30"`
	Type         SessionType `json:"session_type"`
	IsBreak      bool        `json:"is_break"`
	IsFeatured   bool        `json:"is_featured"`
	SponsorID    *string     `json:"sponsor_id"`
	CategoryIDs  []string    `json:"category_ids"`
	ModeratorIDs []string    `json:"moderator_ids"`
	SortOrder    int         `json:"sort_order"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Range returns the session's [start, end) interval.
func (s *ProgramSession) Range() TimeRange {
	return TimeRange{Start: s.StartTime, End: s.EndTime}
}

// SessionInput is the create/update payload for a program session.
type SessionInput struct {
	VenueID      string
	Title        string
	Description  string
	StartTime    string
	EndTime      string
	Type         SessionType
	IsBreak      bool
	IsFeatured   bool
	SponsorID    *string
	CategoryIDs  []string
	ModeratorIDs []string
	SortOrder    int
}

// SessionReferences are the foreign references of a session checked before any write.
type SessionReferences struct {
	VenueID      string
	SponsorID    *string
	CategoryIDs  []string
	ModeratorIDs []string
}

// SessionRef is a compact identity of a session used in diagnostics.
type SessionRef struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime ClockTime `json:"start_time" swaggertype:"string"`
	EndTime   ClockTime `json:"end_time" swaggertype:"string"`
}

// RefOf returns the SessionRef of s.
func RefOf(s *ProgramSession) SessionRef {
	return SessionRef{ID: s.ID, Title: s.Title, StartTime: s.StartTime, EndTime: s.EndTime}
}

// ConflictCheck is the result of checking a candidate range against a venue.
type ConflictCheck struct {
	VenueID     string       `json:"venue_id"`
	HasConflict bool         `json:"has_conflict"`
	Conflicts   []SessionRef `json:"conflicts"`
}

// SessionOverlap is one overlapping pair found in a venue's existing bookings.
type SessionOverlap struct {
	First          SessionRef `json:"first"`
	Second         SessionRef `json:"second"`
	OverlapMinutes int        `json:"overlap_minutes"`
}

// VenueConflictReport flags pre-existing overlaps in a venue.
type VenueConflictReport struct {
	Venue        *Venue           `json:"venue"`
	SessionCount int              `json:"session_count"`
	HasConflicts bool             `json:"has_conflicts"`
	Overlaps     []SessionOverlap `json:"overlaps"`
}

// ProgramSessionRepository defines storage for program sessions.
type ProgramSessionRepository interface {
	// WithVenueLock runs fn while holding an exclusive lock on the venue, so a
	// conflict check and the following write are one atomic step.
	WithVenueLock(ctx context.Context, venueID string, fn func(ctx context.Context) error) error
	Create(ctx context.Context, s *ProgramSession) error
	Update(ctx context.Context, s *ProgramSession) error
	GetByID(ctx context.Context, id string) (*ProgramSession, error)
	ListByVenueID(ctx context.Context, venueID string) ([]*ProgramSession, error)
	// ListByDayID returns all sessions of the day's venues ordered by start_time, sort_order.
	ListByDayID(ctx context.Context, dayID string) ([]*ProgramSession, error)
	CountPresentations(ctx context.Context, sessionID string) (int, error)
	// CountPresentationsBySessionIDs returns presentation counts keyed by session id.
	CountPresentationsBySessionIDs(ctx context.Context, sessionIDs []string) (map[string]int, error)
	Delete(ctx context.Context, id string) error
}

// ProgramService creates, moves and removes bookings.
type ProgramService interface {
	CheckSessionConflict(ctx context.Context, access AccessContext, venueID, startTime, endTime, excludeSessionID string) (*ConflictCheck, error)
	CreateSession(ctx context.Context, access AccessContext, eventID string, in SessionInput) (*ProgramSession, error)
	GetSession(ctx context.Context, access AccessContext, sessionID string) (*ProgramSession, error)
	UpdateSession(ctx context.Context, access AccessContext, sessionID string, in SessionInput) (*ProgramSession, error)
	DeleteSession(ctx context.Context, access AccessContext, sessionID string) error
	CreatePresentation(ctx context.Context, access AccessContext, sessionID string, in PresentationInput) (*Presentation, error)
	UpdatePresentation(ctx context.Context, access AccessContext, presentationID string, in PresentationInput) (*Presentation, error)
	DeletePresentation(ctx context.Context, access AccessContext, presentationID string) error
}
