package domain

import (
	"encoding/json"
	"fmt"
)

// SessionType classifies a program session.
type SessionType string

const (
	SessionTypePlenary  SessionType = "plenary"
	SessionTypeParallel SessionType = "parallel"
	SessionTypeWorkshop SessionType = "workshop"
	SessionTypePoster   SessionType = "poster"
	SessionTypeBreak    SessionType = "break"
	SessionTypeLunch    SessionType = "lunch"
	SessionTypeSocial   SessionType = "social"
	SessionTypeKeynote  SessionType = "keynote"
	SessionTypePanel    SessionType = "panel"
)

// Valid reports whether t is one of the declared session types.
func (t SessionType) Valid() bool {
	switch t {
	case SessionTypePlenary, SessionTypeParallel, SessionTypeWorkshop, SessionTypePoster,
		SessionTypeBreak, SessionTypeLunch, SessionTypeSocial, SessionTypeKeynote, SessionTypePanel:
		return true
	}
	return false
}

func (t *SessionType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(t), func(s string) bool { return SessionType(s).Valid() }, "session_type")
}

// PresentationType classifies a presentation inside a session.
type PresentationType string

const (
	PresentationTypeOral     PresentationType = "oral"
	PresentationTypePoster   PresentationType = "poster"
	PresentationTypeKeynote  PresentationType = "keynote"
	PresentationTypePanel    PresentationType = "panel"
	PresentationTypeWorkshop PresentationType = "workshop"
)

func (t PresentationType) Valid() bool {
	switch t {
	case PresentationTypeOral, PresentationTypePoster, PresentationTypeKeynote,
		PresentationTypePanel, PresentationTypeWorkshop:
		return true
	}
	return false
}

func (t *PresentationType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(t), func(s string) bool { return PresentationType(s).Valid() }, "presentation_type")
}

// SpeakerRole is the part a participant plays in a presentation.
type SpeakerRole string

const (
	SpeakerRolePrimary    SpeakerRole = "primary"
	SpeakerRoleCoSpeaker  SpeakerRole = "co_speaker"
	SpeakerRoleDiscussant SpeakerRole = "discussant"
	SpeakerRoleSecondary  SpeakerRole = "secondary"
	SpeakerRoleModerator  SpeakerRole = "moderator"
)

func (r SpeakerRole) Valid() bool {
	switch r {
	case SpeakerRolePrimary, SpeakerRoleCoSpeaker, SpeakerRoleDiscussant,
		SpeakerRoleSecondary, SpeakerRoleModerator:
		return true
	}
	return false
}

func (r *SpeakerRole) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(r), func(s string) bool { return SpeakerRole(s).Valid() }, "speaker_role")
}

// DayGenerationStrategy selects which calendar dates become event days.
type DayGenerationStrategy string

const (
	StrategyAllDays      DayGenerationStrategy = "all_days"
	StrategyBusinessDays DayGenerationStrategy = "business_days"
	StrategyCustom       DayGenerationStrategy = "custom"
)

func (s DayGenerationStrategy) Valid() bool {
	switch s {
	case StrategyAllDays, StrategyBusinessDays, StrategyCustom:
		return true
	}
	return false
}

func (s *DayGenerationStrategy) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(s), func(v string) bool { return DayGenerationStrategy(v).Valid() }, "strategy")
}

// DayTitleFormat selects how generated days are titled.
type DayTitleFormat string

const (
	TitleFormatDayNumber DayTitleFormat = "day_number"
	TitleFormatDate      DayTitleFormat = "date"
	TitleFormatCustom    DayTitleFormat = "custom"
)

func (f DayTitleFormat) Valid() bool {
	switch f {
	case TitleFormatDayNumber, TitleFormatDate, TitleFormatCustom:
		return true
	}
	return false
}

func (f *DayTitleFormat) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(f), func(v string) bool { return DayTitleFormat(v).Valid() }, "title_format")
}

func unmarshalEnum(b []byte, dst *string, valid func(string) bool, name string) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if !valid(s) {
		return fmt.Errorf("%w: unknown %s %q", ErrInvalidInput, name, s)
	}
	*dst = s
	return nil
}
