package services

import (
	"context"
	"errors"
	"fmt"

	"programscheduler/internal/domain"
)

// Field keys used in reference violations.
const (
	fieldVenueID      = "venue_id"
	fieldSponsorID    = "sponsor_id"
	fieldCategoryIDs  = "category_ids"
	fieldModeratorIDs = "moderator_ids"
	fieldSpeakers     = "speakers"
)

// ReferenceValidator checks that the references attached to a session or
// presentation belong to the session's event and organization, and that
// reference lists are unique and within their limits. It only reads; every
// violation is collected into one *domain.ValidationError.
type ReferenceValidator struct {
	venues       domain.VenueRepository
	days         domain.EventDayRepository
	categories   domain.CategoryRepository
	participants domain.ParticipantRepository
	sponsors     domain.SponsorRepository
}

func NewReferenceValidator(
	venues domain.VenueRepository,
	days domain.EventDayRepository,
	categories domain.CategoryRepository,
	participants domain.ParticipantRepository,
	sponsors domain.SponsorRepository,
) *ReferenceValidator {
	return &ReferenceValidator{
		venues:       venues,
		days:         days,
		categories:   categories,
		participants: participants,
		sponsors:     sponsors,
	}
}

// ValidateSessionReferences returns a *domain.ValidationError listing every
// offending field, nil when all references are valid, or an infrastructure error.
func (v *ReferenceValidator) ValidateSessionReferences(ctx context.Context, access domain.AccessContext, event *domain.Event, refs domain.SessionReferences) error {
	if !access.CanAccess(event.OrganizationID) {
		return domain.ErrForbidden
	}
	verr := domain.NewValidationError()

	if err := v.checkVenue(ctx, event, refs.VenueID, verr); err != nil {
		return err
	}
	if err := v.checkSponsor(ctx, event, refs.SponsorID, verr); err != nil {
		return err
	}
	if err := v.checkCategories(ctx, event, refs.CategoryIDs, verr); err != nil {
		return err
	}
	if len(refs.ModeratorIDs) > domain.MaxModerators {
		verr.Add(fieldModeratorIDs, fmt.Sprintf("at most %d moderators are allowed", domain.MaxModerators))
	}
	for _, id := range duplicates(refs.ModeratorIDs) {
		verr.Add(fieldModeratorIDs, fmt.Sprintf("moderator %s is listed more than once", id))
	}
	if err := v.checkParticipants(ctx, event, refs.ModeratorIDs, fieldModeratorIDs, "moderator", verr); err != nil {
		return err
	}
	return verr.OrNil()
}

// ValidatePresentationReferences checks a presentation's sponsor and speaker
// assignments against the organization of the event owning its session.
func (v *ReferenceValidator) ValidatePresentationReferences(ctx context.Context, access domain.AccessContext, event *domain.Event, refs domain.PresentationReferences) error {
	if !access.CanAccess(event.OrganizationID) {
		return domain.ErrForbidden
	}
	verr := domain.NewValidationError()

	if err := v.checkSponsor(ctx, event, refs.SponsorID, verr); err != nil {
		return err
	}
	if len(refs.Speakers) > domain.MaxSpeakers {
		verr.Add(fieldSpeakers, fmt.Sprintf("at most %d speakers are allowed", domain.MaxSpeakers))
	}
	ids := make([]string, 0, len(refs.Speakers))
	for i, s := range refs.Speakers {
		if s.ParticipantID == "" {
			verr.Add(fieldSpeakers, fmt.Sprintf("speaker %d has no participant_id", i+1))
			continue
		}
		if !s.Role.Valid() {
			verr.Add(fieldSpeakers, fmt.Sprintf("speaker %s has unknown role %q", s.ParticipantID, s.Role))
		}
		ids = append(ids, s.ParticipantID)
	}
	for _, id := range duplicates(ids) {
		verr.Add(fieldSpeakers, fmt.Sprintf("participant %s is assigned more than once", id))
	}
	if err := v.checkParticipants(ctx, event, ids, fieldSpeakers, "speaker", verr); err != nil {
		return err
	}
	return verr.OrNil()
}

func (v *ReferenceValidator) checkVenue(ctx context.Context, event *domain.Event, venueID string, verr *domain.ValidationError) error {
	if venueID == "" {
		verr.Add(fieldVenueID, "venue is required")
		return nil
	}
	venue, err := v.venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			verr.Add(fieldVenueID, "venue does not exist")
			return nil
		}
		return fmt.Errorf("get venue: %w", err)
	}
	day, err := v.days.GetByID(ctx, venue.EventDayID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			verr.Add(fieldVenueID, "venue does not belong to this event")
			return nil
		}
		return fmt.Errorf("get event day: %w", err)
	}
	if day.EventID != event.ID {
		verr.Add(fieldVenueID, "venue does not belong to this event")
	}
	return nil
}

func (v *ReferenceValidator) checkSponsor(ctx context.Context, event *domain.Event, sponsorID *string, verr *domain.ValidationError) error {
	if sponsorID == nil || *sponsorID == "" {
		return nil
	}
	sponsor, err := v.sponsors.GetByID(ctx, *sponsorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			verr.Add(fieldSponsorID, "sponsor does not exist")
			return nil
		}
		return fmt.Errorf("get sponsor: %w", err)
	}
	if sponsor.OrganizationID != event.OrganizationID {
		verr.Add(fieldSponsorID, "sponsor must belong to the event's organization")
	}
	return nil
}

func (v *ReferenceValidator) checkCategories(ctx context.Context, event *domain.Event, ids []string, verr *domain.ValidationError) error {
	if len(ids) > domain.MaxCategories {
		verr.Add(fieldCategoryIDs, fmt.Sprintf("at most %d categories are allowed", domain.MaxCategories))
	}
	for _, id := range duplicates(ids) {
		verr.Add(fieldCategoryIDs, fmt.Sprintf("category %s is listed more than once", id))
	}
	if len(ids) == 0 {
		return nil
	}
	found, err := v.categories.ListByIDs(ctx, unique(ids))
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	byID := make(map[string]*domain.ProgramSessionCategory, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	for _, id := range unique(ids) {
		c, ok := byID[id]
		switch {
		case !ok:
			verr.Add(fieldCategoryIDs, fmt.Sprintf("category %s does not exist", id))
		case c.EventID != event.ID:
			verr.Add(fieldCategoryIDs, fmt.Sprintf("category %s does not belong to this event", id))
		}
	}
	return nil
}

func (v *ReferenceValidator) checkParticipants(ctx context.Context, event *domain.Event, ids []string, field, noun string, verr *domain.ValidationError) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := v.participants.ListByIDs(ctx, unique(ids))
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}
	byID := make(map[string]*domain.Participant, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, id := range unique(ids) {
		p, ok := byID[id]
		switch {
		case !ok:
			verr.Add(field, fmt.Sprintf("%s %s does not exist", noun, id))
		case p.OrganizationID != event.OrganizationID:
			verr.Add(field, fmt.Sprintf("%s %s must belong to the event's organization", noun, id))
		}
	}
	return nil
}

// duplicates returns each id that appears more than once, in first-seen order.
func duplicates(ids []string) []string {
	seen := make(map[string]int, len(ids))
	var out []string
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			out = append(out, id)
		}
	}
	return out
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
