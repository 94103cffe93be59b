package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverKafka selects the Kafka backend.
	DriverKafka = "kafka"
	// DriverNATS selects the NATS backend.
	DriverNATS = "nats"
	// DriverNSQ selects the NSQ backend.
	DriverNSQ = "nsq"
	// DriverGooglePubSub selects the Google Pub/Sub backend.
	DriverGooglePubSub = "google-pubsub"
)

// ErrUnknownDriver indicates an unsupported messaging driver name.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions groups configuration for the supported backends.
type FactoryOptions struct {
	Kafka  KafkaConfig
	NATS   NATSConfig
	NSQ    NSQConfig
	PubSub PubSubConfig
}

// NewFromDriver constructs a Messaging implementation by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Messaging, error) {
	switch strings.TrimSpace(driver) {
	case DriverKafka:
		return NewKafka(opts.Kafka)
	case DriverNATS:
		return NewNATS(opts.NATS)
	case DriverNSQ:
		return NewNSQ(opts.NSQ)
	case DriverGooglePubSub:
		return NewPubSub(ctx, opts.PubSub)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
