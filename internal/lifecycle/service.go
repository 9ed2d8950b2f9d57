// Package lifecycle runs the notification pipeline for one order milestone:
// load the order, email the customer, pause, copy the business list, then
// advance the order status.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/offseason/shoe-cleaning-email/internal/email"
	kafkax "github.com/offseason/shoe-cleaning-email/internal/kafka"
	"github.com/offseason/shoe-cleaning-email/internal/orders"
	"github.com/offseason/shoe-cleaning-email/internal/redisx"
	"github.com/offseason/shoe-cleaning-email/internal/templates"
)

type Event string

const (
	LabelReady       Event = "label-ready"
	ShipmentReceived Event = "shipment-received"
	ReadyToShip      Event = "ready-to-ship"
)

var ErrValidation = errors.New("invalid request")

type Gateway interface {
	GetOrderData(ctx context.Context, orderReference string) (orders.OrderData, error)
	UpdateOrderStatus(ctx context.Context, orderReference string, status orders.Status) error
}

type Mailer interface {
	SendEmail(ctx context.Context, m email.Message) email.Result
	SendBusinessNotification(ctx context.Context, subject string, content email.Content) email.Result
	Delay(ctx context.Context, d time.Duration) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Policy decides which failed send stops the pipeline. The default aborts on
// the customer send only; a failed business copy is reported and ignored.
type Policy struct {
	AbortOnPrimaryFailure   bool
	AbortOnSecondaryFailure bool
}

func DefaultPolicy() Policy { return Policy{AbortOnPrimaryFailure: true} }

type Request struct {
	Event          Event
	OrderReference string
	TrackingNumber string // ready-to-ship, optional
	Label          []byte // label-ready, PDF bytes
	TraceID        string
}

type Outcome struct {
	OrderReference      string
	CustomerEmail       string
	CustomerEmailSent   bool
	BusinessEmailSent   bool
	MessageID           string
	CustomerEmailError  string
	BusinessEmailError  string
	EstimatedCompletion string
	EstimatedDelivery   string
	TrackingNumber      string
}

type eventSpec struct {
	status          orders.Status
	customerSubject string
	businessSubject string
}

var events = map[Event]eventSpec{
	LabelReady: {
		status:          orders.StatusLabelSent,
		customerSubject: "Your Shipping Label is Ready - Order #%s",
		businessSubject: "Shipping Label Sent - Order #%s",
	},
	ShipmentReceived: {
		status:          orders.StatusReceived,
		customerSubject: "We've Received Your Shoes - Order #%s",
		businessSubject: "Shipment Received - Order #%s",
	},
	ReadyToShip: {
		status:          orders.StatusSentToCustomer,
		customerSubject: "Your Shoes Are Ready and On Their Way! - Order #%s",
		businessSubject: "Order Completed and Shipped - #%s",
	},
}

type Service struct {
	Orders   Gateway
	Mailer   Mailer
	Brand    templates.Brand
	Policy   Policy
	Gap      time.Duration
	Location *time.Location
	Now      func() time.Time

	// Optional: lifecycle events and the status cache.
	Producer    Publisher
	Redis       *redis.Client
	ServiceName string

	Log *slog.Logger
}

var tracer = otel.Tracer("github.com/offseason/shoe-cleaning-email/internal/lifecycle")

// Notify runs every step in order and stops at the first fatal one. A status
// write failure after the emails went out is still returned as an error; the
// customer has been notified but the order was not advanced.
func (s *Service) Notify(ctx context.Context, req Request) (Outcome, error) {
	out := Outcome{OrderReference: req.OrderReference, TrackingNumber: req.TrackingNumber}
	log := s.logger().With("event", string(req.Event), "order_reference", req.OrderReference)

	ctx, span := tracer.Start(ctx, "lifecycle."+string(req.Event))
	defer span.End()
	span.SetAttributes(attribute.String("order.reference", req.OrderReference))

	fail := func(err error) (Outcome, error) {
		log.Error("lifecycle notification failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}

	spec, ok := events[req.Event]
	if !ok {
		return fail(fmt.Errorf("%w: unknown lifecycle event %q", ErrValidation, req.Event))
	}
	if req.OrderReference == "" {
		return fail(fmt.Errorf("%w: order reference is required", ErrValidation))
	}
	if req.Event == LabelReady && len(req.Label) == 0 {
		return fail(fmt.Errorf("%w: label PDF is required", ErrValidation))
	}

	log.Info("processing lifecycle notification")

	var data orders.OrderData
	err := s.step(ctx, "orders.get", func(ctx context.Context) error {
		var err error
		data, err = s.Orders.GetOrderData(ctx, req.OrderReference)
		return err
	})
	if err != nil {
		return fail(err)
	}
	out.CustomerEmail = data.Customer.Email

	now := s.now()
	local := inZone(now, s.Location)
	details := templates.OrderDetails{
		CustomerName:        data.Customer.FullName(),
		OrderNumber:         data.Order.OrderReference,
		OrderDate:           formatIn(data.Order.CreatedAt, s.Location, OrderDateLayout),
		PackageName:         data.Package.Name,
		ShoeType:            data.Order.ShoeType,
		Quantity:            data.Order.Quantity,
		SpecialInstructions: data.Order.SpecialInstructions,
	}
	switch req.Event {
	case ShipmentReceived:
		out.EstimatedCompletion = EstimatedCompletion(local).Format(EstimateLayout)
	case ReadyToShip:
		out.EstimatedDelivery = EstimatedDelivery(local).Format(EstimateLayout)
	}

	customer, err := render(s.document(req.Event, details, out))
	if err != nil {
		return fail(err)
	}
	msg := email.Message{
		To:      data.Customer.Email,
		Subject: fmt.Sprintf(spec.customerSubject, req.OrderReference),
		Content: customer,
	}
	if req.Event == LabelReady {
		msg.Attachments = []email.Attachment{{
			Filename:    fmt.Sprintf("shipping-label-%s.pdf", req.OrderReference),
			Content:     req.Label,
			ContentType: "application/pdf",
		}}
	}

	var primary email.Result
	_ = s.step(ctx, "email.customer", func(ctx context.Context) error {
		primary = s.Mailer.SendEmail(ctx, msg)
		return primary.Err()
	})
	out.CustomerEmailSent = primary.Success
	out.MessageID = primary.MessageID
	out.CustomerEmailError = primary.Error
	if !primary.Success && s.Policy.AbortOnPrimaryFailure {
		return fail(fmt.Errorf("failed to send customer email: %w", primary.Err()))
	}

	if err := s.Mailer.Delay(ctx, s.gap()); err != nil {
		return fail(err)
	}

	details.CustomerName = fmt.Sprintf("%s (%s)", details.CustomerName, data.Customer.Email)
	business, err := render(s.document(req.Event, details, out))
	if err != nil {
		return fail(err)
	}
	var secondary email.Result
	_ = s.step(ctx, "email.business", func(ctx context.Context) error {
		secondary = s.Mailer.SendBusinessNotification(ctx, fmt.Sprintf(spec.businessSubject, req.OrderReference), business)
		return secondary.Err()
	})
	out.BusinessEmailSent = secondary.Success
	out.BusinessEmailError = secondary.Error
	if !secondary.Success {
		if s.Policy.AbortOnSecondaryFailure {
			return fail(fmt.Errorf("failed to send business notification: %w", secondary.Err()))
		}
		log.Warn("business notification not sent", "error", secondary.Error)
	}

	err = s.step(ctx, "orders.update_status", func(ctx context.Context) error {
		return s.Orders.UpdateOrderStatus(ctx, req.OrderReference, spec.status)
	})
	if err != nil {
		log.Error("emails sent but order status not updated", "status", string(spec.status))
		return fail(err)
	}

	s.cacheStatus(ctx, log, req.OrderReference, spec.status, now)
	s.publish(req, spec.status, out)

	log.Info("lifecycle notification sent", "message_id", out.MessageID, "business_email_sent", out.BusinessEmailSent)
	return out, nil
}

func (s *Service) document(ev Event, d templates.OrderDetails, out Outcome) templates.Document {
	switch ev {
	case ShipmentReceived:
		return templates.ShipmentReceived(s.Brand, d, out.EstimatedCompletion)
	case ReadyToShip:
		return templates.ReadyToShip(s.Brand, d, out.EstimatedDelivery, out.TrackingNumber)
	default:
		return templates.LabelReady(s.Brand, d)
	}
}

func render(doc templates.Document) (email.Content, error) {
	html, err := doc.HTML()
	if err != nil {
		return email.Content{}, err
	}
	return email.Content{HTML: html, Text: doc.Text()}, nil
}

func (s *Service) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *Service) cacheStatus(ctx context.Context, log *slog.Logger, ref string, status orders.Status, at time.Time) {
	if s.Redis == nil {
		return
	}
	if err := redisx.SetStatus(ctx, s.Redis, ref, string(status), at); err != nil {
		log.Warn("status cache write failed", "error", err)
	}
}

func (s *Service) publish(req Request, status orders.Status, out Outcome) {
	if s.Producer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventLifecycleNotified,
		EventVersion:  1,
		OccurredAt:    s.now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       req.TraceID,
		CorrelationID: req.OrderReference,
		Payload: kafkax.MustMarshal(orders.LifecycleNotifiedPayload{
			OrderReference:    req.OrderReference,
			Lifecycle:         string(req.Event),
			Status:            status,
			CustomerEmailSent: out.CustomerEmailSent,
			BusinessEmailSent: out.BusinessEmailSent,
			MessageID:         out.MessageID,
		}),
	}
	s.Producer.Publish(orders.PartitionKey(req.OrderReference), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventLifecycleNotified)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) gap() time.Duration {
	if s.Gap > 0 {
		return s.Gap
	}
	return email.DefaultGap
}

func (s *Service) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
