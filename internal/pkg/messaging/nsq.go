package messaging

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nsqio/go-nsq"
	"go.uber.org/atomic"
)

// ErrNSQChannelRequired indicates a Consume call without a channel name.
var ErrNSQChannelRequired = errors.New("messaging: nsq consume requires a channel")

// NSQConfig configures the NSQ backend.
type NSQConfig struct {
	// NSQDAddr is the nsqd address used for publishing.
	NSQDAddr string
	// LookupdAddrs are nsqlookupd addresses used for consuming. When empty,
	// consumers connect directly to NSQDAddr.
	LookupdAddrs []string
}

// NSQ implements Messaging on NSQ. NSQ carries no headers or keys, so only
// the body travels on the wire. Delayed delivery uses deferred publish.
type NSQ struct {
	cfg      NSQConfig
	producer *nsq.Producer
	closed   atomic.Bool
}

// NewNSQ connects a producer to nsqd and returns the backend.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.NSQDAddr == "" {
		return nil, errors.New("messaging: nsq requires an nsqd address")
	}

	producer, err := nsq.NewProducer(cfg.NSQDAddr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq producer: %w", err)
	}
	producer.SetLoggerLevel(nsq.LogLevelWarning)

	return &NSQ{cfg: cfg, producer: producer}, nil
}

// Publish sends the message body to the topic, deferred when Delay is set.
func (n *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if n.closed.Load() {
		return PublishResult{}, errors.New("messaging: nsq is closed")
	}
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}

	var err error
	if msg.Delay > 0 {
		err = n.producer.DeferredPublish(destination, msg.Delay, msg.Body)
	} else {
		err = n.producer.Publish(destination, msg.Body)
	}
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nsq publish to %s: %w", destination, err)
	}

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Consume attaches concurrent handlers to a topic/channel pair and blocks
// until the context is canceled or the consumer stops.
func (n *NSQ) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	co := newConsumeOptions(opts...)
	if co.channel == "" {
		return ErrNSQChannelRequired
	}

	cfg := nsq.NewConfig()
	if co.maxInFlight > 0 {
		cfg.MaxInFlight = co.maxInFlight
	}

	consumer, err := nsq.NewConsumer(source, co.channel, cfg)
	if err != nil {
		return fmt.Errorf("messaging: nsq consumer for %s/%s: %w", source, co.channel, err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelWarning)

	consumer.AddConcurrentHandlers(nsq.HandlerFunc(func(m *nsq.Message) error {
		m.DisableAutoResponse()
		msg := &nsqMessage{msg: m, topic: source}

		hErr := callHandlerWithRecover(ctx, DriverNSQ, func() error {
			return handler(ctx, msg)
		})
		if co.autoAck {
			if hErr != nil {
				//nolint:errcheck // requeue is in-process
				msg.Nack(ctx)
			} else {
				//nolint:errcheck // finish is in-process
				msg.Ack(ctx)
			}
		}
		return nil
	}), concurrencyOrDefault(co.concurrency))

	if len(n.cfg.LookupdAddrs) > 0 {
		err = consumer.ConnectToNSQLookupds(n.cfg.LookupdAddrs)
	} else {
		err = consumer.ConnectToNSQD(n.cfg.NSQDAddr)
	}
	if err != nil {
		return fmt.Errorf("messaging: nsq connect for %s/%s: %w", source, co.channel, err)
	}

	select {
	case <-ctx.Done():
		consumer.Stop()
		<-consumer.StopChan
	case <-consumer.StopChan:
	}
	return nil
}

// Close stops the producer.
func (n *NSQ) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	n.producer.Stop()
	return nil
}

type nsqMessage struct {
	msg       *nsq.Message
	topic     string
	responded atomic.Bool
}

func (m *nsqMessage) Body() []byte { return m.msg.Body }

func (m *nsqMessage) Key() []byte { return nil }

func (m *nsqMessage) Headers() []Header { return nil }

func (m *nsqMessage) Attributes() map[string]string {
	return map[string]string{"attempts": strconv.Itoa(int(m.msg.Attempts))}
}

func (m *nsqMessage) ID() string { return string(m.msg.ID[:]) }

func (m *nsqMessage) Topic() string { return m.topic }

func (m *nsqMessage) Timestamp() time.Time { return time.Unix(0, m.msg.Timestamp) }

func (m *nsqMessage) Ack(_ context.Context) error {
	if m.responded.CompareAndSwap(false, true) {
		m.msg.Finish()
	}
	return nil
}

func (m *nsqMessage) Nack(_ context.Context) error {
	if m.responded.CompareAndSwap(false, true) {
		m.msg.Requeue(-1)
	}
	return nil
}
