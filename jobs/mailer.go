package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/smartdine/smartdine/internal/observability"
)

// AsynqMailer queues outbound email on the default queue. It satisfies
// the ledger's Mailer port.
type AsynqMailer struct {
	client *Client
}

// NewAsynqMailer wraps an existing jobs client.
func NewAsynqMailer(client *Client) *AsynqMailer {
	return &AsynqMailer{client: client}
}

// EnqueueEmail submits a send-email task.
func (m *AsynqMailer) EnqueueEmail(ctx context.Context, to []string, subject, body string) error {
	if m == nil || m.client == nil {
		return errors.New("mailer: not configured")
	}
	_, err := m.client.EnqueueSendEmail(ctx, SendEmailPayload{To: to, Subject: subject, Body: body})
	return err
}

// SMTPConfig holds the connection details for the outbound relay.
type SMTPConfig struct {
	Host string
	Port int
	From string
}

// SendEmailJob delivers queued email through a plain SMTP relay
// (Mailpit locally).
type SendEmailJob struct {
	Config  SMTPConfig
	Logger  *slog.Logger
	Metrics *observability.Metrics

	// send overrides smtp.SendMail, used by tests.
	send func(addr string, from string, to []string, msg []byte) error
}

// NewSendEmailJob initialises the email delivery handler.
func NewSendEmailJob(cfg SMTPConfig, logger *slog.Logger, metrics *observability.Metrics) *SendEmailJob {
	return &SendEmailJob{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// Handle executes one email delivery.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("send email: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if len(payload.To) == 0 {
		return asynq.SkipRetry
	}

	addr := fmt.Sprintf("%s:%d", j.Config.Host, j.Config.Port)
	msg := buildMessage(j.Config.From, payload)
	if err := j.send(addr, j.Config.From, payload.To, msg); err != nil {
		j.Metrics.ObserveJob(TaskTypeSendEmail, "error")
		j.Logger.Error("send email",
			slog.Any("error", err),
			slog.String("subject", payload.Subject),
		)
		return err
	}
	j.Metrics.ObserveJob(TaskTypeSendEmail, "ok")
	j.Logger.Info("email sent",
		slog.String("subject", payload.Subject),
		slog.Int("recipients", len(payload.To)),
	)
	return nil
}

func buildMessage(from string, payload SendEmailPayload) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(payload.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", payload.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(payload.Body)
	return []byte(b.String())
}
