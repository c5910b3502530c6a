package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	v := NewValidationError()
	assert.NoError(t, v.OrNil())

	v.Add("moderator_ids", "at most 3 moderators")
	v.Add("category_ids", "category c9 belongs to another event")
	v.Add("moderator_ids", "duplicate moderator m1")

	err := fmt.Errorf("create session: %w", v.OrNil())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReferenceViolation))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields["moderator_ids"], 2)
	assert.Equal(t,
		"reference violation: category_ids: category c9 belongs to another event; moderator_ids: at most 3 moderators, duplicate moderator m1",
		ve.Error())
}

func TestConflictAndDependentErrors(t *testing.T) {
	rng, _ := ParseTimeRange("10:00", "11:00")
	a := &ProgramSession{Title: "Opening"}
	a.StartTime, a.EndTime = clockAt("09:00"), clockAt("10:30")

	err := error(&ConflictError{VenueID: "v1", Range: rng, Conflicts: []*ProgramSession{a}})
	assert.ErrorIs(t, err, ErrSchedulingConflict)
	assert.Contains(t, err.Error(), `"Opening" (09:00-10:30)`)

	err = &DependentRecordsError{Resource: "venue", Dependent: "sessions", Count: 2}
	assert.ErrorIs(t, err, ErrDependentRecordsExist)
	assert.Equal(t, "cannot delete venue: 2 sessions still exist", err.Error())
}

func TestEnumUnmarshal(t *testing.T) {
	var st SessionType
	require.NoError(t, json.Unmarshal([]byte(`"workshop"`), &st))
	assert.Equal(t, SessionTypeWorkshop, st)

	err := json.Unmarshal([]byte(`"hackathon"`), &st)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, SessionTypeWorkshop, st)

	var strat DayGenerationStrategy
	assert.Error(t, json.Unmarshal([]byte(`"weekends"`), &strat))
	assert.False(t, SpeakerRole("host").Valid())
}
