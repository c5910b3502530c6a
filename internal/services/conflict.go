package services

import (
	"context"
	"fmt"

	"programscheduler/internal/domain"
)

// ConflictChecker finds bookings in a venue that overlap a candidate range.
// Create and update use the same path; update passes the edited session's id
// as excludeSessionID so a session can be time-shifted without self-conflict.
type ConflictChecker struct {
	sessions domain.ProgramSessionRepository
}

func NewConflictChecker(sessions domain.ProgramSessionRepository) *ConflictChecker {
	return &ConflictChecker{sessions: sessions}
}

// HasConflict reports whether any session in venueID overlaps rng.
func (c *ConflictChecker) HasConflict(ctx context.Context, venueID string, rng domain.TimeRange, excludeSessionID string) (bool, error) {
	conflicts, err := c.FindConflicts(ctx, venueID, rng, excludeSessionID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

// FindConflicts returns every session in venueID overlapping rng, ordered as stored.
func (c *ConflictChecker) FindConflicts(ctx context.Context, venueID string, rng domain.TimeRange, excludeSessionID string) ([]*domain.ProgramSession, error) {
	existing, err := c.sessions.ListByVenueID(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("list venue sessions: %w", err)
	}
	return overlapping(existing, rng, excludeSessionID), nil
}

func overlapping(sessions []*domain.ProgramSession, rng domain.TimeRange, excludeSessionID string) []*domain.ProgramSession {
	var out []*domain.ProgramSession
	for _, s := range sessions {
		if excludeSessionID != "" && s.ID == excludeSessionID {
			continue
		}
		if s.Range().Overlaps(rng) {
			out = append(out, s)
		}
	}
	return out
}

// OverlapReport compares every pair of sessions and returns the overlapping
// pairs. Quadratic, but n is one venue's bookings for one day.
func OverlapReport(sessions []*domain.ProgramSession) []domain.SessionOverlap {
	overlaps := []domain.SessionOverlap{}
	for i := 0; i < len(sessions); i++ {
		for j := i + 1; j < len(sessions); j++ {
			a, b := sessions[i], sessions[j]
			inter, ok := a.Range().Intersection(b.Range())
			if !ok {
				continue
			}
			overlaps = append(overlaps, domain.SessionOverlap{
				First:          domain.RefOf(a),
				Second:         domain.RefOf(b),
				OverlapMinutes: inter.DurationMinutes(),
			})
		}
	}
	return overlaps
}
