package mailer

import (
	"context"

	"github.com/resend/resend-go/v2"
)

const DefaultFrom = "Ori <notifications@getori.app>"

type Email struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers one email and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, email Email) (string, error)
}

type resendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey string, from string) Sender {
	if from == "" {
		from = DefaultFrom
	}

	return &resendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *resendSender) Send(ctx context.Context, email Email) (string, error) {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", err
	}

	return sent.Id, nil
}
