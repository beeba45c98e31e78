package mail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Message is a single outbound email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Body    string
}

// Mailer delivers messages. Delivery is best-effort and never participates
// in the originating database transaction.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendgridMailer delivers through the SendGrid v3 API.
type SendgridMailer struct {
	apiKey string
	from   *sgmail.Email
}

// NewSendgridMailer constructs a SendGrid-backed mailer.
func NewSendgridMailer(apiKey, fromName, fromEmail string) *SendgridMailer {
	return &SendgridMailer{
		apiKey: apiKey,
		from:   sgmail.NewEmail(fromName, fromEmail),
	}
}

// Send delivers a single message.
func (m *SendgridMailer) Send(ctx context.Context, msg Message) error {
	to := sgmail.NewEmail(msg.ToName, msg.ToEmail)
	email := sgmail.NewSingleEmail(m.from, msg.Subject, to, msg.Body, "")

	req := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", "https://api.sendgrid.com")
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(email)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d", res.StatusCode)
	}
	return nil
}

// LogMailer writes messages to the log instead of delivering them. Used in
// development when no mail provider is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a logging mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message and returns nil.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Sugar().Infow("mail (dev, not delivered)",
		"to", msg.ToEmail, "subject", msg.Subject, "body", msg.Body)
	return nil
}
