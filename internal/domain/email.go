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

// RegistrationEmailData holds data for the registration confirmation email.
type RegistrationEmailData struct {
	Email      string
	EventTitle string
	EventDate  string
	Location   string
}

// LoginCodeEmailData holds data for the one-time login code email.
type LoginCodeEmailData struct {
	Email            string
	Code             string
	ExpiresInMinutes int
}

// BlastEmailData holds data for a creator-authored blast to registrants.
type BlastEmailData struct {
	Email      string
	EventTitle string
	Subject    string
	Message    string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationEmailData) error
	SendLoginCode(ctx context.Context, data *LoginCodeEmailData) error
	SendBlast(ctx context.Context, data *BlastEmailData) error
}

// BlastService fans a creator-authored message out to every registrant of an
// event that has an email on file.
type BlastService interface {
	// SendEventBlast returns how many emails were sent and which recipients
	// failed. Individual send failures do not abort the fan-out.
	SendEventBlast(ctx context.Context, eventID, callerAddress, subject, message string) (sent int, failed []string, err error)
}
