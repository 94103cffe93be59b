package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"go.uber.org/atomic"
	"google.golang.org/api/option"
)

// PubSubConfig configures the Google Pub/Sub backend.
type PubSubConfig struct {
	// ProjectID is the Google Cloud project ID.
	ProjectID string
	// ClientOptions are passed through when creating the client.
	ClientOptions []option.ClientOption
}

// PubSub implements Messaging on Google Pub/Sub. Delayed delivery is not
// supported.
type PubSub struct {
	client *pubsub.Client
	closed atomic.Bool

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewPubSub creates the client and returns the backend. Publishers are
// created lazily per topic on first publish.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("messaging: pubsub requires a project id")
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("messaging: pubsub client: %w", err)
	}
	return &PubSub{client: client, publishers: make(map[string]*pubsub.Publisher)}, nil
}

func (p *PubSub) publisher(topic string) *pubsub.Publisher {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pub, ok := p.publishers[topic]; ok {
		return pub
	}
	pub := p.client.Publisher(topic)
	p.publishers[topic] = pub
	return pub
}

// Publish sends one message to the topic and waits for the server-assigned ID.
func (p *PubSub) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if p.closed.Load() {
		return PublishResult{}, errors.New("messaging: pubsub is closed")
	}
	if msg.Delay > 0 {
		return PublishResult{}, fmt.Errorf("%w: pubsub delayed delivery", ErrUnsupported)
	}

	attrs := make(map[string]string, len(msg.Attributes)+len(msg.Headers))
	for key, value := range msg.Attributes {
		attrs[key] = value
	}
	for _, h := range msg.Headers {
		attrs[h.Key] = string(h.Value)
	}

	res := p.publisher(destination).Publish(ctx, &pubsub.Message{
		Data:        msg.Body,
		Attributes:  attrs,
		OrderingKey: msg.OrderingKey,
	})
	id, err := res.Get(ctx)
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: pubsub publish to %s: %w", destination, err)
	}

	return PublishResult{MessageID: id, Topic: destination, Timestamp: time.Now()}, nil
}

// Consume receives from a subscription until the context is canceled. The
// source is the subscription name unless WithSubscription overrides it, in
// which case the source names the topic for labeling only.
func (p *PubSub) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if p.closed.Load() {
		return errors.New("messaging: pubsub is closed")
	}

	co := newConsumeOptions(opts...)
	topic := ""
	subscription := source
	if co.subscription != "" {
		topic = source
		subscription = co.subscription
	}

	sub := p.client.Subscriber(subscription)
	if co.concurrency > 0 {
		sub.ReceiveSettings.NumGoroutines = co.concurrency
	}
	if co.maxInFlight > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = co.maxInFlight
	}

	err := sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		msg := &pubsubMessage{msg: m, topic: topic}
		hErr := callHandlerWithRecover(ctx, DriverGooglePubSub, func() error {
			return handler(ctx, msg)
		})
		if !co.autoAck || msg.responded.Load() {
			return
		}
		if hErr != nil {
			//nolint:errcheck // nack is in-process
			msg.Nack(ctx)
		} else {
			//nolint:errcheck // ack is in-process
			msg.Ack(ctx)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("messaging: pubsub receive from %s: %w", subscription, err)
	}
	return nil
}

// Close stops all publishers and closes the client.
func (p *PubSub) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	p.mu.Lock()
	pubs := make([]*pubsub.Publisher, 0, len(p.publishers))
	for _, pub := range p.publishers {
		pubs = append(pubs, pub)
	}
	p.publishers = nil
	p.mu.Unlock()

	for _, pub := range pubs {
		pub.Stop()
	}
	return p.client.Close()
}

type pubsubMessage struct {
	msg       *pubsub.Message
	topic     string
	responded atomic.Bool
}

func (m *pubsubMessage) Body() []byte { return m.msg.Data }

func (m *pubsubMessage) Key() []byte {
	if m.msg.OrderingKey == "" {
		return nil
	}
	return []byte(m.msg.OrderingKey)
}

func (m *pubsubMessage) Headers() []Header {
	headers := make([]Header, 0, len(m.msg.Attributes))
	for key, value := range m.msg.Attributes {
		headers = append(headers, Header{Key: key, Value: []byte(value)})
	}
	return headers
}

func (m *pubsubMessage) Attributes() map[string]string { return m.msg.Attributes }

func (m *pubsubMessage) ID() string { return m.msg.ID }

func (m *pubsubMessage) Topic() string { return m.topic }

func (m *pubsubMessage) Timestamp() time.Time { return m.msg.PublishTime }

func (m *pubsubMessage) Ack(_ context.Context) error {
	if m.responded.CompareAndSwap(false, true) {
		m.msg.Ack()
	}
	return nil
}

func (m *pubsubMessage) Nack(_ context.Context) error {
	if m.responded.CompareAndSwap(false, true) {
		m.msg.Nack()
	}
	return nil
}
