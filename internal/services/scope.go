package services

import (
	"context"
	"errors"
	"fmt"

	"programscheduler/internal/domain"
)

// scopeResolver walks the ownership chain venue -> day -> event and checks the
// caller's access to the owning organization.
type scopeResolver struct {
	events domain.EventRepository
	days   domain.EventDayRepository
	venues domain.VenueRepository
}

func (r scopeResolver) event(ctx context.Context, access domain.AccessContext, eventID string) (*domain.Event, error) {
	event, err := r.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !access.CanAccess(event.OrganizationID) {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (r scopeResolver) day(ctx context.Context, access domain.AccessContext, dayID string) (*domain.EventDay, *domain.Event, error) {
	day, err := r.days.GetByID(ctx, dayID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event day: %w", err)
	}
	event, err := r.event(ctx, access, day.EventID)
	if err != nil {
		return nil, nil, err
	}
	return day, event, nil
}

func (r scopeResolver) venue(ctx context.Context, access domain.AccessContext, venueID string) (*domain.Venue, *domain.EventDay, *domain.Event, error) {
	venue, err := r.venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrNotFound
		}
		return nil, nil, nil, fmt.Errorf("get venue: %w", err)
	}
	day, event, err := r.day(ctx, access, venue.EventDayID)
	if err != nil {
		return nil, nil, nil, err
	}
	return venue, day, event, nil
}
