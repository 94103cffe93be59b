// Package mail abstracts email delivery so usecases never depend on a
// concrete provider. The SMTP implementation lives alongside the interface.
package mail

import (
	"context"
	"io"
)

// Message is a provider-agnostic email payload.
type Message struct {
	// From is an optional explicit sender; the provider default applies when empty.
	From string
	// To lists primary recipients.
	To []string
	// Cc lists carbon copy recipients.
	Cc []string
	// Bcc lists blind carbon copy recipients.
	Bcc []string
	// Subject is the subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

// Mail delivers email messages.
type Mail interface {
	io.Closer

	// Send dispatches msg through the underlying provider.
	Send(ctx context.Context, msg Message) error
}
