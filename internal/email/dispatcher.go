// Package email sends transactional mail through Resend.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
	"golang.org/x/time/rate"
)

// ErrDelivery marks a send the provider did not accept.
var ErrDelivery = errors.New("email delivery failed")

// DefaultGap is the pause between the customer send and the business copy.
const DefaultGap = 2 * time.Second

// Emails is the slice of resend.EmailsSvc the dispatcher calls.
type Emails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Content is an already rendered body.
type Content struct {
	HTML string
	Text string
}

type Message struct {
	To          string
	Subject     string
	Content     Content
	CC          []string
	Attachments []Attachment
}

// Result is the outcome of one send. Success means the provider accepted the
// message, not that it was delivered.
type Result struct {
	Success   bool
	MessageID string
	Error     string
}

// Err returns nil on success, otherwise an error wrapping ErrDelivery.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDelivery, r.Error)
}

type Dispatcher struct {
	Emails     Emails
	From       string
	BusinessTo string
	BusinessCC []string
	// Limiter, when set, is waited on before every provider call.
	Limiter *rate.Limiter
	Log     *slog.Logger
}

func NewDispatcher(apiKey, from, businessTo string, businessCC []string) *Dispatcher {
	return &Dispatcher{
		Emails:     resend.NewClient(apiKey).Emails,
		From:       from,
		BusinessTo: businessTo,
		BusinessCC: businessCC,
		Log:        slog.Default(),
	}
}

// SendEmail never returns an error value; failures land in Result.Error.
func (d *Dispatcher) SendEmail(ctx context.Context, m Message) Result {
	log := d.logger().With("to", m.To, "subject", m.Subject)

	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			log.Error("email rate limiter", "error", err)
			return Result{Error: err.Error()}
		}
	}

	req := &resend.SendEmailRequest{
		From:    d.From,
		To:      []string{m.To},
		Subject: m.Subject,
		Html:    m.Content.HTML,
		Text:    m.Content.Text,
	}
	if len(m.CC) > 0 {
		req.Cc = m.CC
	}
	for _, a := range m.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}

	log.Info("sending email", "cc", len(req.Cc), "attachments", len(req.Attachments))
	sent, err := d.Emails.SendWithContext(ctx, req)
	if err != nil {
		log.Error("email sending failed", "error", err)
		return Result{Error: err.Error()}
	}
	var id string
	if sent != nil {
		id = sent.Id
	}
	log.Info("email accepted", "message_id", id)
	return Result{Success: true, MessageID: id}
}

// SendBusinessNotification sends content to the internal address with the
// internal CC list.
func (d *Dispatcher) SendBusinessNotification(ctx context.Context, subject string, content Content) Result {
	return d.SendEmail(ctx, Message{
		To:      d.BusinessTo,
		Subject: subject,
		Content: content,
		CC:      d.BusinessCC,
	})
}

// Delay blocks for dur, or until ctx is done.
func (d *Dispatcher) Delay(ctx context.Context, dur time.Duration) error {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}
