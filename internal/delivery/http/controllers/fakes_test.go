package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"programscheduler/internal/delivery/http/helpers"
	"programscheduler/internal/delivery/http/middleware"
	"programscheduler/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var organizer = domain.AccessContext{UserID: "user-123", OrganizationIDs: []string{"org-1"}}

const (
	eventID   = "0b7d2c1e-5f3a-4c8e-9a1b-2c3d4e5f6a7b"
	dayID     = "1c8e3d2f-6a4b-4d9f-8b2c-3d4e5f6a7b8c"
	venueID   = "2d9f4e3a-7b5c-4eaf-9c3d-4e5f6a7b8c9d"
	sessionID = "3eaf5f4b-8c6d-4fb0-8d4e-5f6a7b8c9dae"
)

// serve routes one request through a mux so path values resolve. A nil
// access leaves the request unauthenticated.
func serve(t *testing.T, pattern string, handler http.HandlerFunc, method, target, body string, access *domain.AccessContext) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if access != nil {
		req = req.WithContext(middleware.WithAccess(req.Context(), *access))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, data any) *helpers.APIError {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	if data != nil && envelope.Error == nil {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return envelope.Error
}

// fakeScheduleService implements domain.ScheduleService for handler tests.
type fakeScheduleService struct {
	err          error
	lastAccess   domain.AccessContext
	lastID       string
	lastOpts     domain.GenerateDaysOptions
	lastDay      domain.DayInput
	lastVenue    domain.VenueInput
	lastCategory domain.CategoryInput
}

func (f *fakeScheduleService) record(access domain.AccessContext, id string) error {
	f.lastAccess, f.lastID = access, id
	return f.err
}

func (f *fakeScheduleService) GenerateDays(_ context.Context, access domain.AccessContext, eventID string, opts domain.GenerateDaysOptions) ([]*domain.EventDay, error) {
	f.lastOpts = opts
	if err := f.record(access, eventID); err != nil {
		return nil, err
	}
	days := make([]*domain.EventDay, 0, len(opts.CustomDates))
	for i, d := range opts.CustomDates {
		days = append(days, &domain.EventDay{ID: "day-" + d.Format(dateLayout), EventID: eventID, Date: d, SortOrder: i + 1})
	}
	return days, nil
}

func (f *fakeScheduleService) CreateEventDay(_ context.Context, access domain.AccessContext, eventID string, in domain.DayInput) (*domain.EventDay, error) {
	f.lastDay = in
	if err := f.record(access, eventID); err != nil {
		return nil, err
	}
	return &domain.EventDay{ID: "day-new", EventID: eventID, Date: in.Date, Title: in.Title, SortOrder: 1}, nil
}

func (f *fakeScheduleService) ListEventDays(_ context.Context, access domain.AccessContext, eventID string) ([]*domain.EventDay, error) {
	if err := f.record(access, eventID); err != nil {
		return nil, err
	}
	return []*domain.EventDay{{ID: "day-1", EventID: eventID, SortOrder: 1}}, nil
}

func (f *fakeScheduleService) DeleteEventDay(_ context.Context, access domain.AccessContext, dayID string) error {
	return f.record(access, dayID)
}

func (f *fakeScheduleService) CreateVenue(_ context.Context, access domain.AccessContext, dayID string, in domain.VenueInput) (*domain.Venue, error) {
	f.lastVenue = in
	if err := f.record(access, dayID); err != nil {
		return nil, err
	}
	return &domain.Venue{ID: "venue-new", EventDayID: dayID, Name: in.Name, Capacity: in.Capacity}, nil
}

func (f *fakeScheduleService) ListVenues(_ context.Context, access domain.AccessContext, dayID string) ([]*domain.Venue, error) {
	if err := f.record(access, dayID); err != nil {
		return nil, err
	}
	return []*domain.Venue{{ID: "venue-1", EventDayID: dayID, Name: "Hall A"}}, nil
}

func (f *fakeScheduleService) DeleteVenue(_ context.Context, access domain.AccessContext, venueID string) error {
	return f.record(access, venueID)
}

func (f *fakeScheduleService) CreateCategory(_ context.Context, access domain.AccessContext, eventID string, in domain.CategoryInput) (*domain.ProgramSessionCategory, error) {
	f.lastCategory = in
	if err := f.record(access, eventID); err != nil {
		return nil, err
	}
	return &domain.ProgramSessionCategory{ID: "cat-new", EventID: eventID, Name: in.Name, Color: in.Color}, nil
}

func (f *fakeScheduleService) ListCategories(_ context.Context, access domain.AccessContext, eventID string) ([]*domain.ProgramSessionCategory, error) {
	if err := f.record(access, eventID); err != nil {
		return nil, err
	}
	return []*domain.ProgramSessionCategory{}, nil
}

func (f *fakeScheduleService) DeleteCategory(_ context.Context, access domain.AccessContext, categoryID string) error {
	return f.record(access, categoryID)
}

func (f *fakeScheduleService) BuildDaySchedule(_ context.Context, access domain.AccessContext, dayID string) (*domain.DaySchedule, error) {
	if err := f.record(access, dayID); err != nil {
		return nil, err
	}
	return &domain.DaySchedule{
		EventDay: domain.EventDaySummary{ID: dayID, Title: "Day 1"},
		Venues:   []domain.VenueSummary{},
		TimeSlots: []domain.TimeSlot{
			{StartTime: "09:00", Sessions: []domain.SessionSummary{}},
		},
	}, nil
}

func (f *fakeScheduleService) VenueConflictReport(_ context.Context, access domain.AccessContext, venueID string) (*domain.VenueConflictReport, error) {
	if err := f.record(access, venueID); err != nil {
		return nil, err
	}
	return &domain.VenueConflictReport{
		Venue:        &domain.Venue{ID: venueID},
		SessionCount: 2,
		HasConflicts: true,
		Overlaps: []domain.SessionOverlap{
			{First: domain.SessionRef{ID: "s-1"}, Second: domain.SessionRef{ID: "s-2"}, OverlapMinutes: 30},
		},
	}, nil
}

// fakeProgramService implements domain.ProgramService for handler tests.
type fakeProgramService struct {
	err              error
	lastID           string
	lastSession      domain.SessionInput
	lastPresentation domain.PresentationInput
	lastCheck        [4]string
}

func (f *fakeProgramService) CheckSessionConflict(_ context.Context, _ domain.AccessContext, venueID, start, end, exclude string) (*domain.ConflictCheck, error) {
	f.lastCheck = [4]string{venueID, start, end, exclude}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ConflictCheck{VenueID: venueID, Conflicts: []domain.SessionRef{}}, nil
}

func (f *fakeProgramService) CreateSession(_ context.Context, _ domain.AccessContext, eventID string, in domain.SessionInput) (*domain.ProgramSession, error) {
	f.lastID, f.lastSession = eventID, in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ProgramSession{ID: "sess-new", VenueID: in.VenueID, Title: in.Title, Type: in.Type}, nil
}

func (f *fakeProgramService) GetSession(_ context.Context, _ domain.AccessContext, id string) (*domain.ProgramSession, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ProgramSession{ID: id, Title: "Keynote"}, nil
}

func (f *fakeProgramService) UpdateSession(_ context.Context, _ domain.AccessContext, id string, in domain.SessionInput) (*domain.ProgramSession, error) {
	f.lastID, f.lastSession = id, in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ProgramSession{ID: id, VenueID: in.VenueID, Title: in.Title}, nil
}

func (f *fakeProgramService) DeleteSession(_ context.Context, _ domain.AccessContext, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeProgramService) CreatePresentation(_ context.Context, _ domain.AccessContext, sessionID string, in domain.PresentationInput) (*domain.Presentation, error) {
	f.lastID, f.lastPresentation = sessionID, in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Presentation{ID: "pres-new", SessionID: sessionID, Title: in.Title, Speakers: in.Speakers}, nil
}

func (f *fakeProgramService) UpdatePresentation(_ context.Context, _ domain.AccessContext, id string, in domain.PresentationInput) (*domain.Presentation, error) {
	f.lastID, f.lastPresentation = id, in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Presentation{ID: id, Title: in.Title}, nil
}

func (f *fakeProgramService) DeletePresentation(_ context.Context, _ domain.AccessContext, id string) error {
	f.lastID = id
	return f.err
}

// fakeImportService implements domain.ImportService for handler tests.
type fakeImportService struct {
	err              error
	lastEventID      string
	lastSessionizeID string
}

func (f *fakeImportService) ImportSessionize(_ context.Context, _ domain.AccessContext, eventID, sessionizeID string) (*domain.ImportReport, error) {
	f.lastEventID, f.lastSessionizeID = eventID, sessionizeID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ImportReport{DaysCreated: 2, VenuesCreated: 3, SessionsCreated: 10, Skipped: []domain.ImportSkip{
		{SessionizeID: "99", Title: "Overlap", Reason: "scheduling conflict"},
	}}, nil
}

// clockAt parses a literal time of day for fixtures.
func clockAt(s string) domain.ClockTime {
	c, err := domain.ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}
