// Package mailer defines the outbound contract for email delivery,
// consumed by the Notification Bus's email dispatcher (C12).
package mailer

import "context"

// Message is a template-driven email: vars are interpolated into the
// named template by the concrete driver.
type Message struct {
	To       string
	Template string
	Vars     map[string]string
}

// Mailer is the adapter boundary; concrete drivers (a transactional email
// provider, a local SMTP relay, a stub for tests) are swappable behind
// this.
type Mailer interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}
