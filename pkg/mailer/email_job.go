package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either set Template and Data, or provide Subject with Text and/or HTML directly.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome"
	Data     map[string]any `json:"data,omitempty"`
}
