package domain

import (
	"context"
	"time"
)

// SessionizeFetcher fetches a GridSmart schedule from Sessionize (or a test double).
type SessionizeFetcher interface {
	Fetch(ctx context.Context, sessionizeID string) (SessionizeGrid, error)
}

// SessionizeGrid is the GridSmart response: one entry per conference date.
type SessionizeGrid []SessionizeDate

// SessionizeDate is one date's rooms and their sessions.
type SessionizeDate struct {
	Date  LocalTime        `json:"date"`
	Rooms []SessionizeRoom `json:"rooms"`
}

// SessionizeRoom is a room on a given date.
type SessionizeRoom struct {
	ID       int                 `json:"id"`
	Name     string              `json:"name"`
	Sessions []SessionizeSession `json:"sessions"`
}

// SessionizeSession is a session in a room. StartsAt/EndsAt are local times
// of the conference without a zone.
type SessionizeSession struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description"`
	StartsAt         LocalTime `json:"startsAt"`
	EndsAt           LocalTime `json:"endsAt"`
	IsServiceSession bool      `json:"isServiceSession"`
	IsPlenumSession  bool      `json:"isPlenumSession"`
	RoomID           int       `json:"roomId"`
}

// LocalTime decodes Sessionize's zone-less "2006-01-02T15:04:05" timestamps.
type LocalTime struct {
	time.Time
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return &time.ParseError{Layout: "2006-01-02T15:04:05", Value: s}
}

// ClockTime returns the wall-clock part.
func (t LocalTime) ClockTime() ClockTime {
	return ClockTime(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// ImportSkip records a Sessionize session that could not be booked.
type ImportSkip struct {
	SessionizeID string `json:"sessionize_id"`
	Title        string `json:"title"`
	Reason       string `json:"reason"`
}

// ImportReport summarises a Sessionize import.
type ImportReport struct {
	DaysCreated     int          `json:"days_created"`
	VenuesCreated   int          `json:"venues_created"`
	SessionsCreated int          `json:"sessions_created"`
	Skipped         []ImportSkip `json:"skipped"`
}

// ImportService books an external schedule into an event through the same
// validation and conflict checks as manual edits.
type ImportService interface {
	ImportSessionize(ctx context.Context, access AccessContext, eventID, sessionizeID string) (*ImportReport, error)
}
