package lifecycle

import (
	"context"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/offseason/shoe-cleaning-email/internal/email"
	"github.com/offseason/shoe-cleaning-email/internal/orders"
)

type fakeGateway struct {
	data      map[string]orders.OrderData
	getErr    error
	updateErr error
	updates   map[string]orders.Status
}

func newFakeGateway(ds ...orders.OrderData) *fakeGateway {
	g := &fakeGateway{data: map[string]orders.OrderData{}, updates: map[string]orders.Status{}}
	for _, d := range ds {
		g.data[d.Order.OrderReference] = d
	}
	return g
}

func (g *fakeGateway) GetOrderData(_ context.Context, ref string) (orders.OrderData, error) {
	if g.getErr != nil {
		return orders.OrderData{}, g.getErr
	}
	d, ok := g.data[ref]
	if !ok {
		return orders.OrderData{}, orders.ErrOrderNotFound
	}
	return d, nil
}

func (g *fakeGateway) UpdateOrderStatus(_ context.Context, ref string, s orders.Status) error {
	if g.updateErr != nil {
		return g.updateErr
	}
	g.updates[ref] = s
	return nil
}

type businessSend struct {
	Subject string
	Content email.Content
}

type fakeMailer struct {
	customerResult email.Result
	businessResult email.Result

	customer []email.Message
	business []businessSend
	delays   []time.Duration
	order    []string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{
		customerResult: email.Result{Success: true, MessageID: "msg_customer"},
		businessResult: email.Result{Success: true, MessageID: "msg_business"},
	}
}

func (m *fakeMailer) SendEmail(_ context.Context, msg email.Message) email.Result {
	m.customer = append(m.customer, msg)
	m.order = append(m.order, "customer")
	return m.customerResult
}

func (m *fakeMailer) SendBusinessNotification(_ context.Context, subject string, c email.Content) email.Result {
	m.business = append(m.business, businessSend{Subject: subject, Content: c})
	m.order = append(m.order, "business")
	return m.businessResult
}

func (m *fakeMailer) Delay(_ context.Context, d time.Duration) error {
	m.delays = append(m.delays, d)
	m.order = append(m.order, "delay")
	return nil
}

type published struct {
	Key     []byte
	Value   []byte
	Headers []kafkago.Header
}

type fakeProducer struct {
	mu   sync.Mutex
	msgs []published
}

func (p *fakeProducer) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{Key: key, Value: value, Headers: headers})
}
