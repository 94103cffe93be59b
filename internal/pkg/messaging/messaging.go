// Package messaging is a broker-agnostic publish/consume abstraction with
// Kafka, NATS, NSQ, and Google Pub/Sub backends. Modules publish domain
// events and consume them without knowing which broker a deployment runs.
package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported is returned when the selected broker does not support a
// feature, for example delayed delivery.
var ErrUnsupported = errors.New("messaging: unsupported operation")

// Messaging publishes and consumes messages on one broker.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher sends messages to a destination (topic/subject/queue).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer receives messages from a source. Consume blocks until the context
// is canceled or the consumer fails.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one received message. With auto-ack enabled, a nil return
// acks the message and a non-nil return nacks it.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a broker-agnostic message to publish.
type OutgoingMessage struct {
	// Body is the payload.
	Body []byte
	// Key is used for partitioning on Kafka-like brokers.
	Key []byte
	// Headers carry binary metadata; duplicate keys are allowed.
	Headers []Header
	// Attributes map string metadata for brokers that model it (Pub/Sub).
	Attributes map[string]string
	// OrderingKey is used by Google Pub/Sub ordered delivery.
	OrderingKey string
	// Delay defers delivery where supported (NSQ).
	Delay time.Duration
}

// Header is a message header key/value pair.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries broker-specific publish metadata.
type PublishResult struct {
	// MessageID is the broker-assigned ID, when exposed.
	MessageID string
	// Topic is the destination used for publishing.
	Topic string
	// Timestamp is when the broker accepted the message.
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	// Body returns the payload.
	Body() []byte
	// Key returns the message key, when the broker has one.
	Key() []byte
	// Headers returns message headers.
	Headers() []Header
	// Attributes returns string metadata derived from headers or broker
	// attributes.
	Attributes() map[string]string
	// ID returns the broker message ID.
	ID() string
	// Topic returns the topic or subject when applicable.
	Topic() string
	// Timestamp returns the broker timestamp.
	Timestamp() time.Time
	// Ack acknowledges successful processing.
	Ack(ctx context.Context) error
	// Nack requests redelivery where the broker supports it.
	Nack(ctx context.Context) error
}
