package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/atomic"
)

// NATSConfig configures the NATS backend.
type NATSConfig struct {
	// URL is the server URL, for example nats://localhost:4222.
	URL string
	// Name identifies this connection on the server.
	Name string
}

// NATS implements Messaging on core NATS. Core NATS is at-most-once, so Ack
// is a no-op and Nack is unsupported. Delayed delivery is not supported.
type NATS struct {
	conn   *nats.Conn
	closed atomic.Bool
}

// NewNATS connects to the server and returns the backend.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}

	opts := []nats.Option{nats.RetryOnFailedConnect(true), nats.MaxReconnects(-1)}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}
	return &NATS{conn: conn}, nil
}

// Publish sends one message on the subject.
func (n *NATS) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if n.closed.Load() {
		return PublishResult{}, errors.New("messaging: nats is closed")
	}
	if msg.Delay > 0 {
		return PublishResult{}, fmt.Errorf("%w: nats delayed delivery", ErrUnsupported)
	}
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}

	header := nats.Header{}
	for _, h := range msg.Headers {
		header.Add(h.Key, string(h.Value))
	}
	for key, value := range msg.Attributes {
		header.Add(key, value)
	}

	err := n.conn.PublishMsg(&nats.Msg{Subject: destination, Data: msg.Body, Header: header})
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nats publish to %s: %w", destination, err)
	}

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Consume subscribes to the subject, optionally in a queue group, and runs
// the handler with the configured concurrency until the context is canceled.
func (n *NATS) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	co := newConsumeOptions(opts...)

	msgCh := make(chan *nats.Msg, concurrencyOrDefault(co.concurrency))
	deliver := func(m *nats.Msg) {
		select {
		case msgCh <- m:
		case <-ctx.Done():
		}
	}

	var (
		sub *nats.Subscription
		err error
	)
	if co.queueGroup != "" {
		sub, err = n.conn.QueueSubscribe(source, co.queueGroup, deliver)
	} else {
		sub, err = n.conn.Subscribe(source, deliver)
	}
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe to %s: %w", source, err)
	}

	// The channel is never closed because the subscription callback may
	// still be delivering; workers exit on context cancellation instead.
	var wg sync.WaitGroup
	for range concurrencyOrDefault(co.concurrency) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case m := <-msgCh:
					//nolint:errcheck // core nats has no redelivery to drive
					callHandlerWithRecover(ctx, DriverNATS, func() error {
						return handler(ctx, &natsMessage{msg: m, received: time.Now()})
					})
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	<-ctx.Done()
	//nolint:errcheck // unsubscribing on shutdown
	sub.Unsubscribe()
	wg.Wait()
	return nil
}

// Close drains pending messages and closes the connection.
func (n *NATS) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return fmt.Errorf("messaging: nats drain: %w", err)
	}
	return nil
}

type natsMessage struct {
	msg      *nats.Msg
	received time.Time
}

func (m *natsMessage) Body() []byte { return m.msg.Data }

func (m *natsMessage) Key() []byte { return nil }

func (m *natsMessage) Headers() []Header {
	var headers []Header
	for key, values := range m.msg.Header {
		for _, value := range values {
			headers = append(headers, Header{Key: key, Value: []byte(value)})
		}
	}
	return headers
}

func (m *natsMessage) Attributes() map[string]string {
	attrs := make(map[string]string, len(m.msg.Header))
	for key := range m.msg.Header {
		attrs[key] = m.msg.Header.Get(key)
	}
	return attrs
}

func (m *natsMessage) ID() string { return m.msg.Header.Get(nats.MsgIdHdr) }

func (m *natsMessage) Topic() string { return m.msg.Subject }

func (m *natsMessage) Timestamp() time.Time { return m.received }

func (m *natsMessage) Ack(_ context.Context) error { return nil }

func (m *natsMessage) Nack(_ context.Context) error {
	return fmt.Errorf("%w: nats nack", ErrUnsupported)
}
