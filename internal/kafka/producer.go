package kafka

import (
	"context"
	"github.com/segmentio/kafka-go"
	"log/slog"
	"time"
)

type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true, // fire-and-forget; failures surface in Completion
			Completion: func(msgs []kafka.Message, err error) {
				if err != nil {
					slog.Error("kafka write failed", "topic", topic, "messages", len(msgs), "error", err)
				}
			},
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the write loop until Close is called. Messages still in the
// inbox at that point are flushed before the writer closes.
func (p *Producer) Start(ctx context.Context) {
	wctx := context.WithoutCancel(ctx)
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			if err := p.w.WriteMessages(wctx, m); err != nil {
				slog.Error("kafka enqueue failed", "topic", p.w.Topic, "error", err)
			}
		}
		if err := p.w.Close(); err != nil {
			slog.Error("kafka writer close", "topic", p.w.Topic, "error", err)
		}
	}()
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	p.inbox <- kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
}

// Close stops accepting messages; the loop flushes and exits.
func (p *Producer) Close() { close(p.inbox) }

// WaitClosed blocks until the loop has flushed and closed the writer.
func (p *Producer) WaitClosed() { <-p.closeCh }
