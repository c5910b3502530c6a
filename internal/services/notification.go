package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"programscheduler/internal/domain"
)

const sessionRescheduledTemplate = "session_rescheduled"

type notificationService struct {
	participants  domain.ParticipantRepository
	presentations domain.PresentationRepository
	mailer        domain.Mailer
	renderer      domain.EmailTemplateRenderer
	logger        *slog.Logger
}

// NewNotificationService returns a NotificationService that mails the people
// attached to a session using the given Mailer and template renderer.
func NewNotificationService(
	participants domain.ParticipantRepository,
	presentations domain.PresentationRepository,
	mailer domain.Mailer,
	renderer domain.EmailTemplateRenderer,
	logger *slog.Logger,
) domain.NotificationService {
	return &notificationService{
		participants:  participants,
		presentations: presentations,
		mailer:        mailer,
		renderer:      renderer,
		logger:        logger,
	}
}

// SessionRescheduled mails every moderator of the session and every speaker of
// its presentations. A failed recipient does not stop the others; all send
// failures are returned joined.
func (s *notificationService) SessionRescheduled(ctx context.Context, change domain.SessionChange) error {
	if change.Session == nil {
		return fmt.Errorf("session change has no session")
	}
	recipients, err := s.recipients(ctx, change.Session)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	var date string
	if change.Day != nil {
		date = change.Day.Date.Format(dateTitleLayout)
	}
	var errs []error
	for _, p := range recipients {
		data := &domain.SessionRescheduledEmailData{
			Email:        p.Email,
			Name:         p.FullName(),
			SessionTitle: change.Session.Title,
			OldVenue:     venueLabel(change.OldVenue),
			NewVenue:     venueLabel(change.NewVenue),
			OldTime:      change.OldRange.String(),
			NewTime:      change.Session.Range().String(),
			Date:         date,
		}
		subject, htmlBody, textBody, err := s.renderer.Render(sessionRescheduledTemplate, data)
		if err != nil {
			return fmt.Errorf("render %s template: %w", sessionRescheduledTemplate, err)
		}
		if err := s.mailer.Send(ctx, p.Email, subject, htmlBody, textBody); err != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", p.Email, err))
			continue
		}
		s.logger.InfoContext(ctx, "reschedule email sent", "session_id", change.Session.ID, "participant_id", p.ID)
	}
	return errors.Join(errs...)
}

func (s *notificationService) recipients(ctx context.Context, session *domain.ProgramSession) ([]*domain.Participant, error) {
	ids := append([]string{}, session.ModeratorIDs...)
	presentations, err := s.presentations.ListBySessionID(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list presentations: %w", err)
	}
	for _, p := range presentations {
		for _, sp := range p.Speakers {
			ids = append(ids, sp.ParticipantID)
		}
	}
	ids = unique(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.participants.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	out := make([]*domain.Participant, 0, len(found))
	for _, p := range found {
		if p.Email != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func venueLabel(v *domain.Venue) string {
	if v == nil {
		return ""
	}
	return v.Label()
}
