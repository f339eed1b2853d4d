package mailer

import "context"

// Mailer sends transactional email. Implementations return an error for any
// transport or provider failure; callers decide whether that is fatal.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
