package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/offseason/shoe-cleaning-email/internal/kafka"
	"github.com/offseason/shoe-cleaning-email/internal/orders"
	"github.com/offseason/shoe-cleaning-email/internal/redisx"
)

// Worker feeds lifecycle requests from Kafka into the same pipeline as the
// HTTP handlers. Label requests need a PDF and only arrive over HTTP.
type Worker struct {
	Service     *Service
	Redis       *redis.Client // dedup; optional
	ServiceName string
}

var requestedEvents = map[string]Event{
	orders.EventShipmentReceivedRequested: ShipmentReceived,
	orders.EventReadyToShipRequested:      ReadyToShip,
}

// HandleLifecycleRequested is installed as the consumer handler.
func (w *Worker) HandleLifecycleRequested(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	ev, ok := requestedEvents[env.EventType]
	if !ok {
		slog.Info("skipping event", "event_type", env.EventType, "event_id", env.EventID)
		return nil
	}

	// 2) dedup via Redis on event_id
	dkey := fmt.Sprintf(redisx.KeyDedup, w.ServiceName, env.EventID)
	if w.Redis != nil {
		seen, err := redisx.Exists(ctx, w.Redis, dkey)
		if err != nil {
			// without the cache a redelivered request may send twice
			slog.Warn("dedup lookup failed", "event_id", env.EventID, "error", err)
		}
		if seen {
			return nil
		}
	}

	// 3) decode payload and run the pipeline
	p, err := kafkax.UnwrapPayload[orders.LifecycleRequestedPayload](env.Payload)
	if err != nil {
		return err
	}
	if _, err := w.Service.Notify(ctx, Request{
		Event:          ev,
		OrderReference: p.OrderReference,
		TrackingNumber: p.TrackingNumber,
		TraceID:        env.TraceID,
	}); err != nil {
		return err
	}

	// only mark once the emails and status write went through
	if w.Redis != nil {
		if err := w.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err(); err != nil {
			slog.Warn("dedup mark failed", "event_id", env.EventID, "error", err)
		}
	}
	return nil
}
