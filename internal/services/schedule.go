package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"programscheduler/internal/domain"
)

type scheduleService struct {
	scope          scopeResolver
	dayRepo        domain.EventDayRepository
	venueRepo      domain.VenueRepository
	categoryRepo   domain.CategoryRepository
	sessionRepo    domain.ProgramSessionRepository
	cache          domain.ScheduleCache
	metrics        domain.SchedulerMetrics
	logger         *slog.Logger
	builds         singleflight.Group
	contextTimeout time.Duration
}

func NewScheduleService(
	eventRepo domain.EventRepository,
	dayRepo domain.EventDayRepository,
	venueRepo domain.VenueRepository,
	categoryRepo domain.CategoryRepository,
	sessionRepo domain.ProgramSessionRepository,
	cache domain.ScheduleCache,
	metrics domain.SchedulerMetrics,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ScheduleService {
	return &scheduleService{
		scope:          scopeResolver{events: eventRepo, days: dayRepo, venues: venueRepo},
		dayRepo:        dayRepo,
		venueRepo:      venueRepo,
		categoryRepo:   categoryRepo,
		sessionRepo:    sessionRepo,
		cache:          cache,
		metrics:        metrics,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *scheduleService) GenerateDays(ctx context.Context, access domain.AccessContext, eventID string, opts domain.GenerateDaysOptions) ([]*domain.EventDay, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.scope.event(ctx, access, eventID)
	if err != nil {
		return nil, err
	}
	existing, err := s.dayRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event days: %w", err)
	}
	dates := make([]time.Time, 0, len(existing))
	for _, d := range existing {
		dates = append(dates, d.Date)
	}

	generated, err := GenerateDays(event, opts, dates)
	if err != nil {
		return nil, err
	}
	created := make([]*domain.EventDay, 0, len(generated))
	if len(generated) == 0 {
		return created, nil
	}
	now := time.Now()
	for _, g := range generated {
		created = append(created, domain.NewEventDay(eventID, g.Date, g.Title, g.SortOrder, now, now))
	}
	if err := s.dayRepo.CreateMany(ctx, created); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("create event days: %w", err)
	}
	if err := s.renumber(ctx, eventID, created); err != nil {
		return nil, err
	}
	s.metrics.DaysGenerated(opts.Strategy, len(created))
	return created, nil
}

// renumber applies the chronological sort_order policy to the whole event and
// refreshes the sort order of the given days. Every cached day of the event is
// dropped since its header may have changed.
func (s *scheduleService) renumber(ctx context.Context, eventID string, days []*domain.EventDay) error {
	if err := s.dayRepo.RenumberByDate(ctx, eventID); err != nil {
		return fmt.Errorf("renumber event days: %w", err)
	}
	all, err := s.dayRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("list event days: %w", err)
	}
	order := make(map[string]int, len(all))
	ids := make([]string, 0, len(all))
	for _, d := range all {
		order[d.ID] = d.SortOrder
		ids = append(ids, d.ID)
	}
	for _, d := range days {
		if n, ok := order[d.ID]; ok {
			d.SortOrder = n
		}
	}
	s.invalidate(ctx, ids...)
	return nil
}

func (s *scheduleService) CreateEventDay(ctx context.Context, access domain.AccessContext, eventID string, in domain.DayInput) (*domain.EventDay, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.scope.event(ctx, access, eventID)
	if err != nil {
		return nil, err
	}
	if !event.ContainsDate(in.Date) {
		return nil, &domain.InvalidRangeError{Field: "date", Reason: "date must fall within the event's start and end dates"}
	}
	existing, err := s.dayRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event days: %w", err)
	}
	date := domain.DateOf(in.Date)
	for _, d := range existing {
		if domain.DateOf(d.Date).Equal(date) {
			return nil, domain.ErrDuplicate
		}
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = date.Format(dateTitleLayout)
	}
	now := time.Now()
	day := domain.NewEventDay(eventID, date, title, len(existing)+1, now, now)
	if err := s.dayRepo.Create(ctx, day); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("create event day: %w", err)
	}
	if err := s.renumber(ctx, eventID, []*domain.EventDay{day}); err != nil {
		return nil, err
	}
	return day, nil
}

func (s *scheduleService) ListEventDays(ctx context.Context, access domain.AccessContext, eventID string) ([]*domain.EventDay, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.scope.event(ctx, access, eventID); err != nil {
		return nil, err
	}
	days, err := s.dayRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event days: %w", err)
	}
	if days == nil {
		days = []*domain.EventDay{}
	}
	return days, nil
}

func (s *scheduleService) DeleteEventDay(ctx context.Context, access domain.AccessContext, dayID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, _, err := s.scope.day(ctx, access, dayID); err != nil {
		return err
	}
	n, err := s.dayRepo.CountSessions(ctx, dayID)
	if err != nil {
		return fmt.Errorf("count day sessions: %w", err)
	}
	if n > 0 {
		return &domain.DependentRecordsError{Resource: "event day", Dependent: "sessions", Count: n}
	}
	if err := s.dayRepo.Delete(ctx, dayID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event day: %w", err)
	}
	s.invalidate(ctx, dayID)
	return nil
}

func (s *scheduleService) CreateVenue(ctx context.Context, access domain.AccessContext, dayID string, in domain.VenueInput) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, _, err := s.scope.day(ctx, access, dayID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Capacity < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	venue := domain.NewVenue(dayID, name, strings.TrimSpace(in.DisplayName), in.Capacity, in.Color, in.SortOrder, now, now)
	if err := s.venueRepo.Create(ctx, venue); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("create venue: %w", err)
	}
	s.invalidate(ctx, dayID)
	return venue, nil
}

func (s *scheduleService) ListVenues(ctx context.Context, access domain.AccessContext, dayID string) ([]*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, _, err := s.scope.day(ctx, access, dayID); err != nil {
		return nil, err
	}
	venues, err := s.venueRepo.ListByDayID(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	if venues == nil {
		venues = []*domain.Venue{}
	}
	return venues, nil
}

func (s *scheduleService) DeleteVenue(ctx context.Context, access domain.AccessContext, venueID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venue, _, _, err := s.scope.venue(ctx, access, venueID)
	if err != nil {
		return err
	}
	n, err := s.venueRepo.CountSessions(ctx, venueID)
	if err != nil {
		return fmt.Errorf("count venue sessions: %w", err)
	}
	if n > 0 {
		return &domain.DependentRecordsError{Resource: "venue", Dependent: "sessions", Count: n}
	}
	if err := s.venueRepo.Delete(ctx, venueID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete venue: %w", err)
	}
	s.invalidate(ctx, venue.EventDayID)
	return nil
}

func (s *scheduleService) CreateCategory(ctx context.Context, access domain.AccessContext, eventID string, in domain.CategoryInput) (*domain.ProgramSessionCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.scope.event(ctx, access, eventID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	c := &domain.ProgramSessionCategory{
		EventID:   eventID,
		Name:      name,
		Color:     in.Color,
		SortOrder: in.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *scheduleService) ListCategories(ctx context.Context, access domain.AccessContext, eventID string) ([]*domain.ProgramSessionCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.scope.event(ctx, access, eventID); err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []*domain.ProgramSessionCategory{}
	}
	return categories, nil
}

func (s *scheduleService) DeleteCategory(ctx context.Context, access domain.AccessContext, categoryID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get category: %w", err)
	}
	if _, err := s.scope.event(ctx, access, c.EventID); err != nil {
		return err
	}
	n, err := s.categoryRepo.CountSessions(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("count category sessions: %w", err)
	}
	if n > 0 {
		return &domain.DependentRecordsError{Resource: "category", Dependent: "sessions", Count: n}
	}
	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *scheduleService) BuildDaySchedule(ctx context.Context, access domain.AccessContext, dayID string) (*domain.DaySchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	day, _, err := s.scope.day(ctx, access, dayID)
	if err != nil {
		return nil, err
	}
	if cached, ok, err := s.cache.Get(ctx, dayID); err != nil {
		s.logger.WarnContext(ctx, "schedule cache read failed", "day_id", dayID, "err", err)
	} else if ok {
		s.metrics.ScheduleServed(domain.ScheduleSourceCache)
		return cached, nil
	}

	// The shared build outlives any single caller; each caller still gives up
	// on its own deadline.
	ch := s.builds.DoChan(dayID, func() (any, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
		defer cancel()
		return s.buildDay(bctx, day)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		s.metrics.ScheduleServed(domain.ScheduleSourceBuild)
		return res.Val.(*domain.DaySchedule), nil
	}
}

func (s *scheduleService) buildDay(ctx context.Context, day *domain.EventDay) (*domain.DaySchedule, error) {
	version, verr := s.cache.Version(ctx, day.ID)
	if verr != nil {
		s.logger.WarnContext(ctx, "schedule cache version read failed", "day_id", day.ID, "err", verr)
	}
	venues, err := s.venueRepo.ListByDayID(ctx, day.ID)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	sessions, err := s.sessionRepo.ListByDayID(ctx, day.ID)
	if err != nil {
		return nil, fmt.Errorf("list day sessions: %w", err)
	}
	categories, err := s.categoryRepo.ListByEventID(ctx, day.EventID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	byID := make(map[string]*domain.ProgramSessionCategory, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}
	counts := map[string]int{}
	if len(ids) > 0 {
		counts, err = s.sessionRepo.CountPresentationsBySessionIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("count presentations: %w", err)
		}
	}

	schedule := BuildDaySchedule(day, venues, sessions, byID, counts)
	if verr != nil {
		return schedule, nil
	}
	if err := s.cache.Set(ctx, schedule, version); err != nil {
		s.logger.WarnContext(ctx, "schedule cache write failed", "day_id", day.ID, "err", err)
	}
	return schedule, nil
}

func (s *scheduleService) VenueConflictReport(ctx context.Context, access domain.AccessContext, venueID string) (*domain.VenueConflictReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venue, _, _, err := s.scope.venue(ctx, access, venueID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByVenueID(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("list venue sessions: %w", err)
	}
	overlaps := OverlapReport(sessions)
	return &domain.VenueConflictReport{
		Venue:        venue,
		SessionCount: len(sessions),
		HasConflicts: len(overlaps) > 0,
		Overlaps:     overlaps,
	}, nil
}

func (s *scheduleService) invalidate(ctx context.Context, dayIDs ...string) {
	invalidateDays(ctx, s.cache, s.logger, dayIDs...)
}

func invalidateDays(ctx context.Context, cache domain.ScheduleCache, logger *slog.Logger, dayIDs ...string) {
	if len(dayIDs) == 0 {
		return
	}
	if err := cache.Invalidate(ctx, dayIDs...); err != nil {
		logger.WarnContext(ctx, "schedule cache invalidation failed", "day_ids", dayIDs, "err", err)
	}
}
