package domain

import (
	"context"
	"time"
)

// EventDaySummary is the day header of a built schedule.
type EventDaySummary struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title"`
	SortOrder int       `json:"sort_order"`
}

// VenueSummary is the venue identity embedded in schedule entries.
type VenueSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Capacity    int    `json:"capacity"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sort_order"`
}

// CategorySummary is the first category of a session.
type CategorySummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SessionSummary is a bounded-size view of a session for agenda grids.
type SessionSummary struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	StartTime         ClockTime        `json:"start_time" swaggertype:"string"`
	EndTime           ClockTime        `json:"end_time" swaggertype:"string"`
	Type              SessionType      `json:"session_type"`
	IsBreak           bool             `json:"is_break"`
	IsFeatured        bool             `json:"is_featured"`
	SortOrder         int              `json:"sort_order"`
	Venue             VenueSummary     `json:"venue"`
	Category          *CategorySummary `json:"category"`
	ModeratorCount    int              `json:"moderator_count"`
	PresentationCount int              `json:"presentation_count"`
}

// TimeSlot groups the sessions that start at the same wall-clock minute.
type TimeSlot struct {
	StartTime string           `json:"start_time"`
	Sessions  []SessionSummary `json:"sessions"`
}

// DaySchedule is the venue-grouped, time-ordered agenda of one day.
// TimeSlots is sorted ascending by StartTime.
type DaySchedule struct {
	EventDay  EventDaySummary `json:"event_day"`
	Venues    []VenueSummary  `json:"venues"`
	TimeSlots []TimeSlot      `json:"time_slots"`
}

// Slot returns the sessions bucketed under key ("HH:MM"), or nil.
func (s *DaySchedule) Slot(key string) []SessionSummary {
	for _, ts := range s.TimeSlots {
		if ts.StartTime == key {
			return ts.Sessions
		}
	}
	return nil
}

// ScheduleCache stores built day schedules. Writers invalidate the affected
// day, which bumps its version. Builders read Version before loading data and
// pass it to Set; Get ignores entries stored under an older version, so a build
// racing a write never outlives the invalidation.
type ScheduleCache interface {
	Version(ctx context.Context, dayID string) (int64, error)
	Get(ctx context.Context, dayID string) (*DaySchedule, bool, error)
	Set(ctx context.Context, schedule *DaySchedule, version int64) error
	Invalidate(ctx context.Context, dayIDs ...string) error
}

// SchedulerMetrics records engine outcomes.
type SchedulerMetrics interface {
	ConflictDetected()
	ReferenceViolation()
	ScheduleServed(source string)
	DaysGenerated(strategy DayGenerationStrategy, n int)
}

// Schedule sources reported to SchedulerMetrics.ScheduleServed.
const (
	ScheduleSourceCache = "cache"
	ScheduleSourceBuild = "build"
)

// DayInput is the payload for creating a single event day.
type DayInput struct {
	Date  time.Time
	Title string
}

// VenueInput is the payload for creating a venue.
type VenueInput struct {
	Name        string
	DisplayName string
	Capacity    int
	Color       string
	SortOrder   int
}

// CategoryInput is the payload for creating a session category.
type CategoryInput struct {
	Name      string
	Color     string
	SortOrder int
}

// ScheduleService manages the event structure (days, venues, categories) and
// reconstructs agendas.
type ScheduleService interface {
	GenerateDays(ctx context.Context, access AccessContext, eventID string, opts GenerateDaysOptions) ([]*EventDay, error)
	CreateEventDay(ctx context.Context, access AccessContext, eventID string, in DayInput) (*EventDay, error)
	ListEventDays(ctx context.Context, access AccessContext, eventID string) ([]*EventDay, error)
	DeleteEventDay(ctx context.Context, access AccessContext, dayID string) error
	CreateVenue(ctx context.Context, access AccessContext, dayID string, in VenueInput) (*Venue, error)
	ListVenues(ctx context.Context, access AccessContext, dayID string) ([]*Venue, error)
	DeleteVenue(ctx context.Context, access AccessContext, venueID string) error
	CreateCategory(ctx context.Context, access AccessContext, eventID string, in CategoryInput) (*ProgramSessionCategory, error)
	ListCategories(ctx context.Context, access AccessContext, eventID string) ([]*ProgramSessionCategory, error)
	DeleteCategory(ctx context.Context, access AccessContext, categoryID string) error
	BuildDaySchedule(ctx context.Context, access AccessContext, dayID string) (*DaySchedule, error)
	VenueConflictReport(ctx context.Context, access AccessContext, venueID string) (*VenueConflictReport, error)
}
