package core

import (
	"net/mail"
	"strings"
)

type (
	// EmailMessage is a single outbound email. Content is already rendered;
	// personalization happens upstream (see core/blast).
	EmailMessage struct {
		To          []mail.Address
		Subject     string
		TextContent string
		HTMLContent string
	}

	// SendReport aggregates per-message outcomes of a batch send.
	// Per-recipient detail never crosses this boundary; failed sends are
	// logged by the email service itself.
	SendReport struct {
		Sent   int `json:"sent"`
		Failed int `json:"failed"`
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently, out of band;
		// failures are logged, not returned.
		SendMessages(messages ...*EmailMessage)

		// SendBatch sends each message independently and synchronously;
		// one failure never aborts the remaining sends.
		SendBatch(messages ...*EmailMessage) SendReport
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }

func (m *EmailMessage) HasContent() bool {
	return (m.TextContent != "") || (m.HTMLContent != "")
}

// PlainToHTML renders free-text content as minimal HTML, the way the
// dashboard's blast composer expects line breaks to survive.
func PlainToHTML(text string) string {
	return strings.ReplaceAll(text, "\n", "<br>")
}
