package mailer

// Template names understood by the email worker.
const (
	TemplateVerifyEmail   = "verify_email"
	TemplatePasswordReset = "password_reset"
	TemplateWelcome       = "welcome"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects one of the worker's templates and Data feeds it; raw
// Subject/Text/HTML may be supplied instead for ad-hoc messages.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
