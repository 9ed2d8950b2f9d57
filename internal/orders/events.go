package orders

import (
	"encoding/json"
	"time"
)

const (
	EventLifecycleNotified         = "OrderLifecycleNotified"
	EventShipmentReceivedRequested = "ShipmentReceivedRequested"
	EventReadyToShipRequested      = "ReadyToShipRequested"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "shoe-cleaning-email-service"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order reference
	Payload       json.RawMessage `json:"payload"`
}

// LifecycleNotifiedPayload is published once both emails went out and the
// status was written.
type LifecycleNotifiedPayload struct {
	OrderReference    string `json:"order_reference"`
	Lifecycle         string `json:"lifecycle"` // label-ready | shipment-received | ready-to-ship
	Status            Status `json:"status"`
	CustomerEmailSent bool   `json:"customer_email_sent"`
	BusinessEmailSent bool   `json:"business_email_sent"`
	MessageID         string `json:"message_id,omitempty"`
}

// LifecycleRequestedPayload is what the worker consumes for the two events
// that need no attachment.
type LifecycleRequestedPayload struct {
	OrderReference string `json:"order_reference"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}
