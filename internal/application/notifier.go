package application

import "context"

// Notifier is the outbound email collaborator. All sends are
// fire-and-forget from the caller's perspective: failures are logged by
// the services and never fail the primary operation.
type Notifier interface {
	SendEmailVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
	SendWelcomeEmail(ctx context.Context, email, name, role string) error
}
