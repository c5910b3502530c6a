package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"programscheduler/internal/domain"
)

// store is an in-memory backing for every repository fake below.
type store struct {
	mu            sync.Mutex
	nextID        int
	events        map[string]*domain.Event
	days          map[string]*domain.EventDay
	venues        map[string]*domain.Venue
	categories    map[string]*domain.ProgramSessionCategory
	sessions      map[string]*domain.ProgramSession
	presentations map[string]*domain.Presentation
	participants  map[string]*domain.Participant
	sponsors      map[string]*domain.Sponsor
	locked        []string
	err           error // returned by list/count calls when set
	// onListVenues runs at the start of VenueRepository.ListByDayID when set.
	onListVenues func(ctx context.Context) error
}

func newStore() *store {
	return &store{
		events:        map[string]*domain.Event{},
		days:          map[string]*domain.EventDay{},
		venues:        map[string]*domain.Venue{},
		categories:    map[string]*domain.ProgramSessionCategory{},
		sessions:      map[string]*domain.ProgramSession{},
		presentations: map[string]*domain.Presentation{},
		participants:  map[string]*domain.Participant{},
		sponsors:      map[string]*domain.Sponsor{},
	}
}

func (s *store) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *store) addEvent(orgID, start, end string) *domain.Event {
	st, _ := time.Parse(domain.DateLayout, start)
	en, _ := time.Parse(domain.DateLayout, end)
	e := domain.NewEvent(orgID, "Conf", st, en, time.Now(), time.Now())
	e.ID = s.id("ev")
	s.events[e.ID] = e
	return e
}

func (s *store) addDay(eventID, date string) *domain.EventDay {
	d, _ := time.Parse(domain.DateLayout, date)
	day := domain.NewEventDay(eventID, d, "Day", len(s.days)+1, time.Now(), time.Now())
	day.ID = s.id("day")
	s.days[day.ID] = day
	return day
}

func (s *store) addVenue(dayID, name string, sortOrder int) *domain.Venue {
	v := domain.NewVenue(dayID, name, "", 100, "#fff", sortOrder, time.Now(), time.Now())
	v.ID = s.id("venue")
	s.venues[v.ID] = v
	return v
}

func (s *store) addCategory(eventID, name string) *domain.ProgramSessionCategory {
	c := &domain.ProgramSessionCategory{ID: s.id("cat"), EventID: eventID, Name: name, Color: "#000"}
	s.categories[c.ID] = c
	return c
}

func (s *store) addSession(venueID, title, start, end string) *domain.ProgramSession {
	sess := &domain.ProgramSession{
		ID:           s.id("sess"),
		VenueID:      venueID,
		Title:        title,
		StartTime:    clockAt(start),
		EndTime:      clockAt(end),
		Type:         domain.SessionTypeParallel,
		CategoryIDs:  []string{},
		ModeratorIDs: []string{},
	}
	s.sessions[sess.ID] = sess
	return sess
}

func (s *store) addPresentation(sessionID, start, end string, speakers ...string) *domain.Presentation {
	p := &domain.Presentation{
		ID:        s.id("pres"),
		SessionID: sessionID,
		Title:     "Talk",
		Type:      domain.PresentationTypeOral,
		StartTime: clockAt(start),
		EndTime:   clockAt(end),
	}
	for i, id := range speakers {
		p.Speakers = append(p.Speakers, domain.SpeakerAssignment{ParticipantID: id, Role: domain.SpeakerRolePrimary, SortOrder: i + 1})
	}
	s.presentations[p.ID] = p
	return p
}

func (s *store) addParticipant(orgID, email string) *domain.Participant {
	p := &domain.Participant{ID: s.id("part"), OrganizationID: orgID, FirstName: "Ada", LastName: "Lovelace", Email: email}
	s.participants[p.ID] = p
	return p
}

func (s *store) addSponsor(orgID string) *domain.Sponsor {
	sp := &domain.Sponsor{ID: s.id("sponsor"), OrganizationID: orgID, Name: "Acme"}
	s.sponsors[sp.ID] = sp
	return sp
}

type fakeEventRepo struct{ *store }

func (f fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

type fakeDayRepo struct{ *store }

func (f fakeDayRepo) Create(ctx context.Context, day *domain.EventDay) error {
	for _, d := range f.days {
		if d.EventID == day.EventID && d.Date.Equal(day.Date) {
			return domain.ErrDuplicate
		}
	}
	day.ID = f.id("day")
	f.days[day.ID] = day
	return nil
}

func (f fakeDayRepo) CreateMany(ctx context.Context, days []*domain.EventDay) error {
	for _, d := range days {
		if err := f.Create(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (f fakeDayRepo) GetByID(ctx context.Context, id string) (*domain.EventDay, error) {
	if d, ok := f.days[id]; ok {
		return d, nil
	}
	return nil, domain.ErrNotFound
}

func (f fakeDayRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventDay, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.EventDay
	for _, d := range f.days {
		if d.EventID == eventID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f fakeDayRepo) RenumberByDate(ctx context.Context, eventID string) error {
	days, _ := f.ListByEventID(ctx, eventID)
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	for i, d := range days {
		d.SortOrder = i + 1
	}
	return nil
}

func (f fakeDayRepo) CountSessions(ctx context.Context, dayID string) (int, error) {
	n := 0
	for _, s := range f.sessions {
		if v, ok := f.venues[s.VenueID]; ok && v.EventDayID == dayID {
			n++
		}
	}
	return n, nil
}

func (f fakeDayRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.days[id]; !ok {
		return domain.ErrNotFound
	}
	for vid, v := range f.venues {
		if v.EventDayID == id {
			delete(f.venues, vid)
		}
	}
	delete(f.days, id)
	return nil
}

type fakeVenueRepo struct{ *store }

func (f fakeVenueRepo) Create(ctx context.Context, v *domain.Venue) error {
	v.ID = f.id("venue")
	f.venues[v.ID] = v
	return nil
}

func (f fakeVenueRepo) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	if v, ok := f.venues[id]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (f fakeVenueRepo) ListByDayID(ctx context.Context, dayID string) ([]*domain.Venue, error) {
	if f.onListVenues != nil {
		if err := f.onListVenues(ctx); err != nil {
			return nil, err
		}
	}
	var out []*domain.Venue
	for _, v := range f.venues {
		if v.EventDayID == dayID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f fakeVenueRepo) CountSessions(ctx context.Context, venueID string) (int, error) {
	n := 0
	for _, s := range f.sessions {
		if s.VenueID == venueID {
			n++
		}
	}
	return n, nil
}

func (f fakeVenueRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.venues[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.venues, id)
	return nil
}

type fakeCategoryRepo struct{ *store }

func (f fakeCategoryRepo) Create(ctx context.Context, c *domain.ProgramSessionCategory) error {
	for _, existing := range f.categories {
		if existing.EventID == c.EventID && existing.Name == c.Name {
			return domain.ErrDuplicate
		}
	}
	c.ID = f.id("cat")
	f.categories[c.ID] = c
	return nil
}

func (f fakeCategoryRepo) GetByID(ctx context.Context, id string) (*domain.ProgramSessionCategory, error) {
	if c, ok := f.categories[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (f fakeCategoryRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.ProgramSessionCategory, error) {
	var out []*domain.ProgramSessionCategory
	for _, id := range ids {
		if c, ok := f.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeCategoryRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.ProgramSessionCategory, error) {
	var out []*domain.ProgramSessionCategory
	for _, c := range f.categories {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeCategoryRepo) CountSessions(ctx context.Context, categoryID string) (int, error) {
	n := 0
	for _, s := range f.sessions {
		for _, id := range s.CategoryIDs {
			if id == categoryID {
				n++
			}
		}
	}
	return n, nil
}

func (f fakeCategoryRepo) Delete(ctx context.Context, id string) error {
	delete(f.categories, id)
	return nil
}

type fakeSessionRepo struct{ *store }

func (f fakeSessionRepo) WithVenueLock(ctx context.Context, venueID string, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store.locked = append(f.store.locked, venueID)
	return fn(ctx)
}

func (f fakeSessionRepo) Create(ctx context.Context, s *domain.ProgramSession) error {
	s.ID = f.id("sess")
	f.sessions[s.ID] = s
	return nil
}

func (f fakeSessionRepo) Update(ctx context.Context, s *domain.ProgramSession) error {
	if _, ok := f.sessions[s.ID]; !ok {
		return domain.ErrNotFound
	}
	f.sessions[s.ID] = s
	return nil
}

func (f fakeSessionRepo) GetByID(ctx context.Context, id string) (*domain.ProgramSession, error) {
	if s, ok := f.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f fakeSessionRepo) ListByVenueID(ctx context.Context, venueID string) ([]*domain.ProgramSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.ProgramSession
	for _, s := range f.sessions {
		if s.VenueID == venueID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f fakeSessionRepo) ListByDayID(ctx context.Context, dayID string) ([]*domain.ProgramSession, error) {
	var out []*domain.ProgramSession
	for _, s := range f.sessions {
		if v, ok := f.venues[s.VenueID]; ok && v.EventDayID == dayID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f fakeSessionRepo) CountPresentations(ctx context.Context, sessionID string) (int, error) {
	n := 0
	for _, p := range f.presentations {
		if p.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (f fakeSessionRepo) CountPresentationsBySessionIDs(ctx context.Context, ids []string) (map[string]int, error) {
	out := map[string]int{}
	for _, id := range ids {
		n, _ := f.CountPresentations(ctx, id)
		if n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (f fakeSessionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

type fakePresentationRepo struct{ *store }

func (f fakePresentationRepo) Create(ctx context.Context, p *domain.Presentation) error {
	p.ID = f.id("pres")
	f.presentations[p.ID] = p
	return nil
}

func (f fakePresentationRepo) Update(ctx context.Context, p *domain.Presentation) error {
	if _, ok := f.presentations[p.ID]; !ok {
		return domain.ErrNotFound
	}
	f.presentations[p.ID] = p
	return nil
}

func (f fakePresentationRepo) GetByID(ctx context.Context, id string) (*domain.Presentation, error) {
	if p, ok := f.presentations[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f fakePresentationRepo) ListBySessionID(ctx context.Context, sessionID string) ([]*domain.Presentation, error) {
	var out []*domain.Presentation
	for _, p := range f.presentations {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePresentationRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.presentations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.presentations, id)
	return nil
}

type fakeParticipantRepo struct{ *store }

func (f fakeParticipantRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Participant, error) {
	var out []*domain.Participant
	for _, id := range ids {
		if p, ok := f.participants[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeSponsorRepo struct{ *store }

func (f fakeSponsorRepo) GetByID(ctx context.Context, id string) (*domain.Sponsor, error) {
	if s, ok := f.sponsors[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

// fakeCache is a map-backed ScheduleCache that records invalidations.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]cachedDay
	versions    map[string]int64
	invalidated []string
	getErr      error
}

type cachedDay struct {
	schedule *domain.DaySchedule
	version  int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]cachedDay{}, versions: map[string]int64{}}
}

func (c *fakeCache) Version(ctx context.Context, dayID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[dayID], nil
}

func (c *fakeCache) Get(ctx context.Context, dayID string) (*domain.DaySchedule, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	e, ok := c.entries[dayID]
	if !ok || e.version != c.versions[dayID] {
		return nil, false, nil
	}
	return e.schedule, true, nil
}

func (c *fakeCache) Set(ctx context.Context, s *domain.DaySchedule, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[s.EventDay.ID] = cachedDay{schedule: s, version: version}
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, dayIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range dayIDs {
		c.versions[id]++
		delete(c.entries, id)
	}
	c.invalidated = append(c.invalidated, dayIDs...)
	return nil
}

// fakeMetrics counts recorded outcomes.
type fakeMetrics struct {
	mu         sync.Mutex
	conflicts  int
	violations int
	served     map[string]int
	generated  int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{served: map[string]int{}} }

func (m *fakeMetrics) ConflictDetected()   { m.mu.Lock(); m.conflicts++; m.mu.Unlock() }
func (m *fakeMetrics) ReferenceViolation() { m.mu.Lock(); m.violations++; m.mu.Unlock() }
func (m *fakeMetrics) ScheduleServed(source string) {
	m.mu.Lock()
	m.served[source]++
	m.mu.Unlock()
}
func (m *fakeMetrics) DaysGenerated(_ domain.DayGenerationStrategy, n int) {
	m.mu.Lock()
	m.generated += n
	m.mu.Unlock()
}

type fakeNotifier struct {
	changes []domain.SessionChange
	err     error
}

func (n *fakeNotifier) SessionRescheduled(ctx context.Context, change domain.SessionChange) error {
	n.changes = append(n.changes, change)
	return n.err
}

type sentMail struct {
	to, subject string
}

type fakeMailer struct {
	sent   []sentMail
	failTo string
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if to == m.failTo {
		return fmt.Errorf("mailbox unavailable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}

type fakeRenderer struct {
	data []*domain.SessionRescheduledEmailData
}

func (r *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	d := data.(*domain.SessionRescheduledEmailData)
	r.data = append(r.data, d)
	return "Rescheduled: " + d.SessionTitle, "<p>" + d.NewTime + "</p>", d.NewTime, nil
}

type fakeFetcher struct {
	grid domain.SessionizeGrid
	err  error
}

func (f fakeFetcher) Fetch(ctx context.Context, id string) (domain.SessionizeGrid, error) {
	return f.grid, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires services over one store.
type fixture struct {
	store    *store
	cache    *fakeCache
	metrics  *fakeMetrics
	notifier *fakeNotifier
	schedule domain.ScheduleService
	program  domain.ProgramService
	access   domain.AccessContext
	event    *domain.Event
}

func newFixture() *fixture {
	st := newStore()
	f := &fixture{
		store:    st,
		cache:    newFakeCache(),
		metrics:  newFakeMetrics(),
		notifier: &fakeNotifier{},
		access:   domain.AccessContext{UserID: "u-1", OrganizationIDs: []string{"org-1"}},
	}
	f.event = st.addEvent("org-1", "2025-06-15", "2025-06-17")
	f.schedule = NewScheduleService(fakeEventRepo{st}, fakeDayRepo{st}, fakeVenueRepo{st}, fakeCategoryRepo{st}, fakeSessionRepo{st},
		f.cache, f.metrics, discardLogger(), time.Second)
	f.program = NewProgramService(fakeEventRepo{st}, fakeDayRepo{st}, fakeVenueRepo{st}, fakeSessionRepo{st}, fakePresentationRepo{st},
		f.validator(), f.notifier, f.cache, f.metrics, discardLogger(), time.Second)
	return f
}

func (f *fixture) validator() *ReferenceValidator {
	st := f.store
	return NewReferenceValidator(fakeVenueRepo{st}, fakeDayRepo{st}, fakeCategoryRepo{st}, fakeParticipantRepo{st}, fakeSponsorRepo{st})
}

// clockAt parses a literal time of day for fixtures.
func clockAt(s string) domain.ClockTime {
	c, err := domain.ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}
