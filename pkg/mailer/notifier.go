package mailer

import (
	"context"

	"github.com/vendora/marketplace-api/pkg/helpers"
)

// QueueNotifier enqueues notification emails to RabbitMQ. Delivery itself
// happens in cmd/email_worker; the API only fires jobs and never blocks a
// primary operation on email delivery.
type QueueNotifier struct {
	Pub              *helpers.RabbitPublisher
	VerifyEmailURL   string
	ResetPasswordURL string
}

func NewQueueNotifier(pub *helpers.RabbitPublisher, verifyURL, resetURL string) *QueueNotifier {
	return &QueueNotifier{Pub: pub, VerifyEmailURL: verifyURL, ResetPasswordURL: resetURL}
}

func (n *QueueNotifier) SendEmailVerification(ctx context.Context, email, token string) error {
	return n.publish(ctx, EmailJob{
		To:       email,
		Template: TemplateVerifyEmail,
		Data: map[string]any{
			"link": n.VerifyEmailURL + "?token=" + token,
		},
	})
}

func (n *QueueNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	return n.publish(ctx, EmailJob{
		To:       email,
		Template: TemplatePasswordReset,
		Data: map[string]any{
			"link": n.ResetPasswordURL + "?token=" + token,
		},
	})
}

func (n *QueueNotifier) SendWelcomeEmail(ctx context.Context, email, name, role string) error {
	return n.publish(ctx, EmailJob{
		To:       email,
		Template: TemplateWelcome,
		Data: map[string]any{
			"name": name,
			"role": role,
		},
	})
}

func (n *QueueNotifier) publish(ctx context.Context, job EmailJob) error {
	if n == nil || n.Pub == nil {
		return nil
	}
	return n.Pub.PublishJSON(ctx, job)
}
