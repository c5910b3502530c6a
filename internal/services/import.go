package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"programscheduler/internal/domain"
)

type importService struct {
	scope          scopeResolver
	dayRepo        domain.EventDayRepository
	venueRepo      domain.VenueRepository
	sessionRepo    domain.ProgramSessionRepository
	fetcher        domain.SessionizeFetcher
	checker        *ConflictChecker
	cache          domain.ScheduleCache
	metrics        domain.SchedulerMetrics
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewImportService(
	eventRepo domain.EventRepository,
	dayRepo domain.EventDayRepository,
	venueRepo domain.VenueRepository,
	sessionRepo domain.ProgramSessionRepository,
	fetcher domain.SessionizeFetcher,
	cache domain.ScheduleCache,
	metrics domain.SchedulerMetrics,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ImportService {
	return &importService{
		scope:          scopeResolver{events: eventRepo, days: dayRepo, venues: venueRepo},
		dayRepo:        dayRepo,
		venueRepo:      venueRepo,
		sessionRepo:    sessionRepo,
		fetcher:        fetcher,
		checker:        NewConflictChecker(sessionRepo),
		cache:          cache,
		metrics:        metrics,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// ImportSessionize books a Sessionize GridSmart schedule into the event. Days and
// venues are matched by date and name and created when missing. Existing
// bookings are kept; imported sessions that would overlap them, fall outside
// the event or have an unusable duration are skipped and reported.
func (s *importService) ImportSessionize(ctx context.Context, access domain.AccessContext, eventID, sessionizeID string) (*domain.ImportReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.scope.event(ctx, access, eventID)
	if err != nil {
		return nil, err
	}
	grid, err := s.fetcher.Fetch(ctx, sessionizeID)
	if err != nil {
		return nil, fmt.Errorf("fetch sessionize schedule: %w", err)
	}

	existing, err := s.dayRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event days: %w", err)
	}
	days := make(map[time.Time]*domain.EventDay, len(existing))
	for _, d := range existing {
		days[domain.DateOf(d.Date)] = d
	}

	report := &domain.ImportReport{Skipped: []domain.ImportSkip{}}
	touched := make([]string, 0, len(grid))
	for _, date := range grid {
		on := domain.DateOf(date.Date.Time)
		if !event.ContainsDate(on) {
			for _, room := range date.Rooms {
				for _, sess := range room.Sessions {
					report.Skipped = append(report.Skipped, skip(sess, "date is outside the event"))
				}
			}
			continue
		}
		day, ok := days[on]
		if !ok {
			now := time.Now()
			day = domain.NewEventDay(eventID, on, on.Format(dateTitleLayout), len(days)+1, now, now)
			if err := s.dayRepo.Create(ctx, day); err != nil {
				return nil, fmt.Errorf("create event day %s: %w", on.Format(domain.DateLayout), err)
			}
			days[on] = day
			report.DaysCreated++
		}
		touched = append(touched, day.ID)
		if err := s.importRooms(ctx, day, date.Rooms, report); err != nil {
			return nil, err
		}
	}

	if report.DaysCreated > 0 {
		if err := s.dayRepo.RenumberByDate(ctx, eventID); err != nil {
			return nil, fmt.Errorf("renumber event days: %w", err)
		}
	}
	invalidateDays(ctx, s.cache, s.logger, unique(touched)...)
	s.logger.InfoContext(ctx, "sessionize import finished",
		"event_id", eventID,
		"sessionize_id", sessionizeID,
		"sessions_created", report.SessionsCreated,
		"skipped", len(report.Skipped),
	)
	return report, nil
}

func (s *importService) importRooms(ctx context.Context, day *domain.EventDay, rooms []domain.SessionizeRoom, report *domain.ImportReport) error {
	venues, err := s.venueRepo.ListByDayID(ctx, day.ID)
	if err != nil {
		return fmt.Errorf("list venues: %w", err)
	}
	byName := make(map[string]*domain.Venue, len(venues))
	for _, v := range venues {
		byName[strings.ToLower(v.Name)] = v
	}

	for i, room := range rooms {
		name := strings.TrimSpace(room.Name)
		if name == "" {
			name = fmt.Sprintf("Room %d", room.ID)
		}
		venue, ok := byName[strings.ToLower(name)]
		if !ok {
			now := time.Now()
			venue = domain.NewVenue(day.ID, name, "", 0, "", len(venues)+i+1, now, now)
			if err := s.venueRepo.Create(ctx, venue); err != nil {
				return fmt.Errorf("create venue %s: %w", name, err)
			}
			byName[strings.ToLower(name)] = venue
			report.VenuesCreated++
		}
		for _, sess := range room.Sessions {
			if err := s.importSession(ctx, venue, sess, report); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *importService) importSession(ctx context.Context, venue *domain.Venue, in domain.SessionizeSession, report *domain.ImportReport) error {
	if in.EndsAt.Time.Sub(in.StartsAt.Time) >= 24*time.Hour || !sameDate(in.StartsAt.Time, in.EndsAt.Time) {
		report.Skipped = append(report.Skipped, skip(in, "session spans more than one day"))
		return nil
	}
	rng, err := sessionRange(in.StartsAt.ClockTime().String(), in.EndsAt.ClockTime().String())
	if err != nil {
		var rerr *domain.InvalidRangeError
		if errors.As(err, &rerr) {
			report.Skipped = append(report.Skipped, skip(in, rerr.Reason))
			return nil
		}
		return err
	}

	typ := domain.SessionTypeParallel
	switch {
	case in.IsServiceSession:
		typ = domain.SessionTypeBreak
	case in.IsPlenumSession:
		typ = domain.SessionTypePlenary
	}
	desc := ""
	if in.Description != nil {
		desc = *in.Description
	}
	now := time.Now()
	session := &domain.ProgramSession{
		VenueID:      venue.ID,
		Title:        strings.TrimSpace(in.Title),
		Description:  desc,
		StartTime:    rng.Start,
		EndTime:      rng.End,
		Type:         typ,
		IsBreak:      typ == domain.SessionTypeBreak,
		CategoryIDs:  []string{},
		ModeratorIDs: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.sessionRepo.WithVenueLock(ctx, venue.ID, func(ctx context.Context) error {
		conflicts, err := s.checker.FindConflicts(ctx, venue.ID, rng, "")
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &domain.ConflictError{VenueID: venue.ID, Range: rng, Conflicts: conflicts}
		}
		return s.sessionRepo.Create(ctx, session)
	})
	if err != nil {
		var cerr *domain.ConflictError
		if errors.As(err, &cerr) {
			s.metrics.ConflictDetected()
			report.Skipped = append(report.Skipped, skip(in, cerr.Error()))
			return nil
		}
		return fmt.Errorf("create session %s: %w", in.Title, err)
	}
	report.SessionsCreated++
	return nil
}

func skip(in domain.SessionizeSession, reason string) domain.ImportSkip {
	return domain.ImportSkip{SessionizeID: in.ID, Title: in.Title, Reason: reason}
}

func sameDate(a, b time.Time) bool {
	return domain.DateOf(a).Equal(domain.DateOf(b))
}
