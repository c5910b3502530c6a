package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// SessionRescheduledEmailData holds data for the session rescheduled email.
type SessionRescheduledEmailData struct {
	Email        string
	Name         string
	SessionTitle string
	OldVenue     string
	NewVenue     string
	OldTime      string
	NewTime      string
	Date         string
}

// SessionChange describes a booking that moved in time or space.
type SessionChange struct {
	Session  *ProgramSession
	Day      *EventDay
	OldVenue *Venue
	NewVenue *Venue
	OldRange TimeRange
}

// NotificationService tells participants about schedule changes that affect them.
type NotificationService interface {
	SessionRescheduled(ctx context.Context, change SessionChange) error
}
