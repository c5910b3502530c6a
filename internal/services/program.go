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

type programService struct {
	scope            scopeResolver
	sessionRepo      domain.ProgramSessionRepository
	presentationRepo domain.PresentationRepository
	validator        *ReferenceValidator
	checker          *ConflictChecker
	notifier         domain.NotificationService
	cache            domain.ScheduleCache
	metrics          domain.SchedulerMetrics
	logger           *slog.Logger
	contextTimeout   time.Duration
}

func NewProgramService(
	eventRepo domain.EventRepository,
	dayRepo domain.EventDayRepository,
	venueRepo domain.VenueRepository,
	sessionRepo domain.ProgramSessionRepository,
	presentationRepo domain.PresentationRepository,
	validator *ReferenceValidator,
	notifier domain.NotificationService,
	cache domain.ScheduleCache,
	metrics domain.SchedulerMetrics,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ProgramService {
	return &programService{
		scope:            scopeResolver{events: eventRepo, days: dayRepo, venues: venueRepo},
		sessionRepo:      sessionRepo,
		presentationRepo: presentationRepo,
		validator:        validator,
		checker:          NewConflictChecker(sessionRepo),
		notifier:         notifier,
		cache:            cache,
		metrics:          metrics,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

// parseRange parses a start/end pair into a range, reporting the offending field.
func parseRange(start, end string) (domain.TimeRange, error) {
	s, err := domain.ParseClockTime(start)
	if err != nil {
		return domain.TimeRange{}, &domain.InvalidRangeError{Field: "start_time", Reason: fmt.Sprintf("%q is not a valid HH:MM time", start)}
	}
	e, err := domain.ParseClockTime(end)
	if err != nil {
		return domain.TimeRange{}, &domain.InvalidRangeError{Field: "end_time", Reason: fmt.Sprintf("%q is not a valid HH:MM time", end)}
	}
	rng, err := domain.NewTimeRange(s, e)
	if err != nil {
		return domain.TimeRange{}, &domain.InvalidRangeError{Field: "end_time", Reason: "end_time must be after start_time"}
	}
	return rng, nil
}

func sessionRange(start, end string) (domain.TimeRange, error) {
	rng, err := parseRange(start, end)
	if err != nil {
		return rng, err
	}
	if d := rng.Duration(); d < domain.MinSessionMinutes*time.Minute || d > domain.MaxSessionMinutes*time.Minute {
		return domain.TimeRange{}, &domain.InvalidRangeError{
			Field:  "end_time",
			Reason: fmt.Sprintf("session must last between %d and %d minutes, got %s", domain.MinSessionMinutes, domain.MaxSessionMinutes, d),
		}
	}
	return rng, nil
}

func sessionType(t domain.SessionType) (domain.SessionType, error) {
	if t == "" {
		return domain.SessionTypeParallel, nil
	}
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown session_type %q", domain.ErrInvalidInput, t)
	}
	return t, nil
}

func (s *programService) CheckSessionConflict(ctx context.Context, access domain.AccessContext, venueID, startTime, endTime, excludeSessionID string) (*domain.ConflictCheck, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, _, _, err := s.scope.venue(ctx, access, venueID); err != nil {
		return nil, err
	}
	rng, err := parseRange(startTime, endTime)
	if err != nil {
		return nil, err
	}
	conflicts, err := s.checker.FindConflicts(ctx, venueID, rng, excludeSessionID)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.SessionRef, 0, len(conflicts))
	for _, c := range conflicts {
		refs = append(refs, domain.RefOf(c))
	}
	return &domain.ConflictCheck{VenueID: venueID, HasConflict: len(refs) > 0, Conflicts: refs}, nil
}

func (s *programService) CreateSession(ctx context.Context, access domain.AccessContext, eventID string, in domain.SessionInput) (*domain.ProgramSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.scope.event(ctx, access, eventID)
	if err != nil {
		return nil, err
	}
	session, err := s.prepareSession(ctx, access, event, in)
	if err != nil {
		return nil, err
	}
	venue, _, _, err := s.scope.venue(ctx, access, session.VenueID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.CreatedAt, session.UpdatedAt = now, now
	err = s.sessionRepo.WithVenueLock(ctx, session.VenueID, func(ctx context.Context) error {
		if err := s.ensureFree(ctx, session.VenueID, session.Range(), ""); err != nil {
			return err
		}
		return s.sessionRepo.Create(ctx, session)
	})
	if err != nil {
		return nil, s.writeError("create session", err)
	}
	invalidateDays(ctx, s.cache, s.logger, venue.EventDayID)
	return session, nil
}

// prepareSession checks the payload and its references and returns an unsaved session.
func (s *programService) prepareSession(ctx context.Context, access domain.AccessContext, event *domain.Event, in domain.SessionInput) (*domain.ProgramSession, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	typ, err := sessionType(in.Type)
	if err != nil {
		return nil, err
	}
	rng, err := sessionRange(in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	err = s.validator.ValidateSessionReferences(ctx, access, event, domain.SessionReferences{
		VenueID:      in.VenueID,
		SponsorID:    in.SponsorID,
		CategoryIDs:  in.CategoryIDs,
		ModeratorIDs: in.ModeratorIDs,
	})
	if err != nil {
		if errors.Is(err, domain.ErrReferenceViolation) {
			s.metrics.ReferenceViolation()
		}
		return nil, err
	}
	return &domain.ProgramSession{
		VenueID:      in.VenueID,
		Title:        title,
		Description:  in.Description,
		StartTime:    rng.Start,
		EndTime:      rng.End,
		Type:         typ,
		IsBreak:      in.IsBreak || typ == domain.SessionTypeBreak || typ == domain.SessionTypeLunch,
		IsFeatured:   in.IsFeatured,
		SponsorID:    emptyToNil(in.SponsorID),
		CategoryIDs:  nonNil(in.CategoryIDs),
		ModeratorIDs: nonNil(in.ModeratorIDs),
		SortOrder:    in.SortOrder,
	}, nil
}

// ensureFree fails with a *domain.ConflictError when rng overlaps a booking in
// the venue. It must run under the venue lock.
func (s *programService) ensureFree(ctx context.Context, venueID string, rng domain.TimeRange, excludeSessionID string) error {
	conflicts, err := s.checker.FindConflicts(ctx, venueID, rng, excludeSessionID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &domain.ConflictError{VenueID: venueID, Range: rng, Conflicts: conflicts}
	}
	return nil
}

func (s *programService) writeError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrSchedulingConflict):
		s.metrics.ConflictDetected()
		return err
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, domain.ErrReferenceViolation), errors.Is(err, domain.ErrInvalidRange):
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *programService) GetSession(ctx context.Context, access domain.AccessContext, sessionID string) (*domain.ProgramSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session, _, _, err := s.loadSession(ctx, access, sessionID)
	return session, err
}

func (s *programService) loadSession(ctx context.Context, access domain.AccessContext, sessionID string) (*domain.ProgramSession, *domain.Venue, *domain.EventDay, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrNotFound
		}
		return nil, nil, nil, fmt.Errorf("get session: %w", err)
	}
	venue, day, _, err := s.scope.venue(ctx, access, session.VenueID)
	if err != nil {
		return nil, nil, nil, err
	}
	return session, venue, day, nil
}

func (s *programService) UpdateSession(ctx context.Context, access domain.AccessContext, sessionID string, in domain.SessionInput) (*domain.ProgramSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, oldVenue, oldDay, err := s.loadSession(ctx, access, sessionID)
	if err != nil {
		return nil, err
	}
	event, err := s.scope.event(ctx, access, oldDay.EventID)
	if err != nil {
		return nil, err
	}
	if in.VenueID == "" {
		in.VenueID = existing.VenueID
	}
	updated, err := s.prepareSession(ctx, access, event, in)
	if err != nil {
		return nil, err
	}
	newVenue, newDay, _, err := s.scope.venue(ctx, access, updated.VenueID)
	if err != nil {
		return nil, err
	}
	if err := s.ensurePresentationsFit(ctx, sessionID, updated.Range()); err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	err = s.sessionRepo.WithVenueLock(ctx, updated.VenueID, func(ctx context.Context) error {
		if err := s.ensureFree(ctx, updated.VenueID, updated.Range(), updated.ID); err != nil {
			return err
		}
		return s.sessionRepo.Update(ctx, updated)
	})
	if err != nil {
		return nil, s.writeError("update session", err)
	}
	invalidateDays(ctx, s.cache, s.logger, distinct(oldDay.ID, newDay.ID)...)

	if existing.VenueID != updated.VenueID || existing.Range() != updated.Range() {
		change := domain.SessionChange{
			Session:  updated,
			Day:      newDay,
			OldVenue: oldVenue,
			NewVenue: newVenue,
			OldRange: existing.Range(),
		}
		if err := s.notifier.SessionRescheduled(ctx, change); err != nil {
			s.logger.WarnContext(ctx, "reschedule notification failed", "session_id", updated.ID, "err", err)
		}
	}
	return updated, nil
}

// ensurePresentationsFit rejects a session range that would leave an existing
// presentation outside its session.
func (s *programService) ensurePresentationsFit(ctx context.Context, sessionID string, rng domain.TimeRange) error {
	presentations, err := s.presentationRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list presentations: %w", err)
	}
	for _, p := range presentations {
		if !rng.Contains(p.Range()) {
			return &domain.InvalidRangeError{
				Field:  "start_time",
				Reason: fmt.Sprintf("presentation %q (%s) would fall outside %s", p.Title, p.Range(), rng),
			}
		}
	}
	return nil
}

func (s *programService) DeleteSession(ctx context.Context, access domain.AccessContext, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	_, _, day, err := s.loadSession(ctx, access, sessionID)
	if err != nil {
		return err
	}
	n, err := s.sessionRepo.CountPresentations(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("count presentations: %w", err)
	}
	if n > 0 {
		return &domain.DependentRecordsError{Resource: "session", Dependent: "presentations", Count: n}
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete session: %w", err)
	}
	invalidateDays(ctx, s.cache, s.logger, day.ID)
	return nil
}

func (s *programService) CreatePresentation(ctx context.Context, access domain.AccessContext, sessionID string, in domain.PresentationInput) (*domain.Presentation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session, _, day, err := s.loadSession(ctx, access, sessionID)
	if err != nil {
		return nil, err
	}
	p, err := s.preparePresentation(ctx, access, session, day, in)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.presentationRepo.Create(ctx, p); err != nil {
		return nil, s.writeError("create presentation", err)
	}
	invalidateDays(ctx, s.cache, s.logger, day.ID)
	return p, nil
}

func (s *programService) preparePresentation(ctx context.Context, access domain.AccessContext, session *domain.ProgramSession, day *domain.EventDay, in domain.PresentationInput) (*domain.Presentation, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	typ := in.Type
	if typ == "" {
		typ = domain.PresentationTypeOral
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown presentation_type %q", domain.ErrInvalidInput, typ)
	}
	rng, err := parseRange(in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	if !session.Range().Contains(rng) {
		field := "start_time"
		if rng.Start >= session.StartTime {
			field = "end_time"
		}
		return nil, &domain.InvalidRangeError{
			Field:  field,
			Reason: fmt.Sprintf("presentation %s must lie within its session %s", rng, session.Range()),
		}
	}
	event, err := s.scope.event(ctx, access, day.EventID)
	if err != nil {
		return nil, err
	}
	err = s.validator.ValidatePresentationReferences(ctx, access, event, domain.PresentationReferences{
		SponsorID: in.SponsorID,
		Speakers:  in.Speakers,
	})
	if err != nil {
		if errors.Is(err, domain.ErrReferenceViolation) {
			s.metrics.ReferenceViolation()
		}
		return nil, err
	}
	speakers := make([]domain.SpeakerAssignment, len(in.Speakers))
	for i, sp := range in.Speakers {
		speakers[i] = sp
		if speakers[i].SortOrder == 0 {
			speakers[i].SortOrder = i + 1
		}
	}
	return &domain.Presentation{
		SessionID: session.ID,
		Title:     title,
		Abstract:  in.Abstract,
		Type:      typ,
		StartTime: rng.Start,
		EndTime:   rng.End,
		Speakers:  speakers,
		SponsorID: emptyToNil(in.SponsorID),
		SortOrder: in.SortOrder,
	}, nil
}

func (s *programService) loadPresentation(ctx context.Context, access domain.AccessContext, presentationID string) (*domain.Presentation, *domain.ProgramSession, *domain.EventDay, error) {
	p, err := s.presentationRepo.GetByID(ctx, presentationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrNotFound
		}
		return nil, nil, nil, fmt.Errorf("get presentation: %w", err)
	}
	session, _, day, err := s.loadSession(ctx, access, p.SessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, session, day, nil
}

func (s *programService) UpdatePresentation(ctx context.Context, access domain.AccessContext, presentationID string, in domain.PresentationInput) (*domain.Presentation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, session, day, err := s.loadPresentation(ctx, access, presentationID)
	if err != nil {
		return nil, err
	}
	p, err := s.preparePresentation(ctx, access, session, day, in)
	if err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	if err := s.presentationRepo.Update(ctx, p); err != nil {
		return nil, s.writeError("update presentation", err)
	}
	invalidateDays(ctx, s.cache, s.logger, day.ID)
	return p, nil
}

func (s *programService) DeletePresentation(ctx context.Context, access domain.AccessContext, presentationID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	_, _, day, err := s.loadPresentation(ctx, access, presentationID)
	if err != nil {
		return err
	}
	if err := s.presentationRepo.Delete(ctx, presentationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete presentation: %w", err)
	}
	invalidateDays(ctx, s.cache, s.logger, day.ID)
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func distinct(ids ...string) []string {
	return unique(ids)
}
