package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"programscheduler/internal/domain"
)

func TestValidateSessionReferences(t *testing.T) {
	f := newFixture()
	st := f.store
	day := st.addDay(f.event.ID, "2025-06-15")
	venue := st.addVenue(day.ID, "Hall", 1)
	cat := st.addCategory(f.event.ID, "AI")
	other := st.addEvent("org-1", "2025-07-01", "2025-07-02")
	foreignCat := st.addCategory(other.ID, "Foreign")
	otherDay := st.addDay(other.ID, "2025-07-01")
	foreignVenue := st.addVenue(otherDay.ID, "Elsewhere", 1)
	sponsor := st.addSponsor("org-1")
	foreignSponsor := st.addSponsor("org-2")
	mods := []string{
		st.addParticipant("org-1", "").ID,
		st.addParticipant("org-1", "").ID,
		st.addParticipant("org-1", "").ID,
		st.addParticipant("org-1", "").ID,
	}
	outsider := st.addParticipant("org-2", "")

	tests := []struct {
		name       string
		refs       domain.SessionReferences
		wantFields []string
	}{
		{
			name: "valid",
			refs: domain.SessionReferences{VenueID: venue.ID, SponsorID: &sponsor.ID, CategoryIDs: []string{cat.ID}, ModeratorIDs: mods[:3]},
		},
		{
			name:       "foreign category and fourth moderator reported together",
			refs:       domain.SessionReferences{VenueID: venue.ID, CategoryIDs: []string{foreignCat.ID}, ModeratorIDs: mods},
			wantFields: []string{fieldCategoryIDs, fieldModeratorIDs},
		},
		{
			name:       "missing venue",
			refs:       domain.SessionReferences{},
			wantFields: []string{fieldVenueID},
		},
		{
			name:       "venue from another event",
			refs:       domain.SessionReferences{VenueID: foreignVenue.ID},
			wantFields: []string{fieldVenueID},
		},
		{
			name:       "unknown venue",
			refs:       domain.SessionReferences{VenueID: "nope"},
			wantFields: []string{fieldVenueID},
		},
		{
			name:       "sponsor of another organization",
			refs:       domain.SessionReferences{VenueID: venue.ID, SponsorID: &foreignSponsor.ID},
			wantFields: []string{fieldSponsorID},
		},
		{
			name:       "duplicate moderator",
			refs:       domain.SessionReferences{VenueID: venue.ID, ModeratorIDs: []string{mods[0], mods[0]}},
			wantFields: []string{fieldModeratorIDs},
		},
		{
			name:       "moderator of another organization",
			refs:       domain.SessionReferences{VenueID: venue.ID, ModeratorIDs: []string{outsider.ID}},
			wantFields: []string{fieldModeratorIDs},
		},
		{
			name:       "too many categories",
			refs:       domain.SessionReferences{VenueID: venue.ID, CategoryIDs: []string{cat.ID, "a", "b", "c", "d", "e"}},
			wantFields: []string{fieldCategoryIDs},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.validator().ValidateSessionReferences(context.Background(), f.access, f.event, tt.refs)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrReferenceViolation))
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			got := make([]string, 0, len(verr.Fields))
			for k := range verr.Fields {
				got = append(got, k)
			}
			assert.ElementsMatch(t, tt.wantFields, got)
		})
	}
}

func TestValidateSessionReferences_Forbidden(t *testing.T) {
	f := newFixture()
	outsider := domain.AccessContext{UserID: "u-2", OrganizationIDs: []string{"org-9"}}

	err := f.validator().ValidateSessionReferences(context.Background(), outsider, f.event, domain.SessionReferences{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := domain.AccessContext{UserID: "root", IsAdmin: true}
	err = f.validator().ValidateSessionReferences(context.Background(), admin, f.event, domain.SessionReferences{})
	assert.ErrorIs(t, err, domain.ErrReferenceViolation)
}

func TestValidatePresentationReferences(t *testing.T) {
	f := newFixture()
	st := f.store
	p1 := st.addParticipant("org-1", "")
	p2 := st.addParticipant("org-1", "")
	outsider := st.addParticipant("org-2", "")

	many := make([]domain.SpeakerAssignment, 0, 11)
	for i := 0; i < 11; i++ {
		many = append(many, domain.SpeakerAssignment{ParticipantID: st.addParticipant("org-1", "").ID, Role: domain.SpeakerRoleCoSpeaker})
	}

	tests := []struct {
		name     string
		speakers []domain.SpeakerAssignment
		wantErr  bool
	}{
		{name: "valid", speakers: []domain.SpeakerAssignment{{ParticipantID: p1.ID, Role: domain.SpeakerRolePrimary}, {ParticipantID: p2.ID, Role: domain.SpeakerRoleDiscussant}}},
		{name: "no speakers", speakers: nil},
		{name: "duplicate participant", speakers: []domain.SpeakerAssignment{{ParticipantID: p1.ID, Role: domain.SpeakerRolePrimary}, {ParticipantID: p1.ID, Role: domain.SpeakerRoleCoSpeaker}}, wantErr: true},
		{name: "other organization", speakers: []domain.SpeakerAssignment{{ParticipantID: outsider.ID, Role: domain.SpeakerRolePrimary}}, wantErr: true},
		{name: "unknown participant", speakers: []domain.SpeakerAssignment{{ParticipantID: "ghost", Role: domain.SpeakerRolePrimary}}, wantErr: true},
		{name: "unknown role", speakers: []domain.SpeakerAssignment{{ParticipantID: p1.ID, Role: "host"}}, wantErr: true},
		{name: "empty participant", speakers: []domain.SpeakerAssignment{{Role: domain.SpeakerRolePrimary}}, wantErr: true},
		{name: "more than ten", speakers: many, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.validator().ValidatePresentationReferences(context.Background(), f.access, f.event, domain.PresentationReferences{Speakers: tt.speakers})
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, fieldSpeakers)
		})
	}
}
