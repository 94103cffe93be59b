package messaging

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/atomic"
)

// ErrKafkaGroupRequired indicates a Consume call without a consumer group.
var ErrKafkaGroupRequired = errors.New("messaging: kafka consume requires a group")

// KafkaConfig configures the Kafka backend.
type KafkaConfig struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string
	// BatchTimeout bounds how long the writer buffers before flushing.
	BatchTimeout time.Duration
	// MinBytes and MaxBytes tune reader fetch sizes.
	MinBytes int
	MaxBytes int
}

// Kafka implements Messaging on Apache Kafka using segmentio/kafka-go.
// Delayed delivery is not supported.
type Kafka struct {
	cfg    KafkaConfig
	closed atomic.Bool

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafka builds a Kafka messaging backend. Writers are created lazily per
// topic on first publish.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("messaging: kafka requires at least one broker")
	}

	if cfg.MinBytes <= 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}

	return &Kafka{cfg: cfg, writers: make(map[string]*kafka.Writer)}, nil
}

func (k *Kafka) writer(topic string) *kafka.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()

	if w, ok := k.writers[topic]; ok {
		return w
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(k.cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: k.cfg.BatchTimeout,
	}
	k.writers[topic] = w
	return w
}

// Publish writes one message to the topic and waits for broker acks.
func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if k.closed.Load() {
		return PublishResult{}, errors.New("messaging: kafka is closed")
	}
	if msg.Delay > 0 {
		return PublishResult{}, fmt.Errorf("%w: kafka delayed delivery", ErrUnsupported)
	}

	headers := make([]kafka.Header, 0, len(msg.Headers)+len(msg.Attributes))
	for _, h := range msg.Headers {
		headers = append(headers, kafka.Header{Key: h.Key, Value: h.Value})
	}
	for key, value := range msg.Attributes {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(value)})
	}

	now := time.Now()
	err := k.writer(destination).WriteMessages(ctx, kafka.Message{
		Key:     msg.Key,
		Value:   msg.Body,
		Headers: headers,
		Time:    now,
	})
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: kafka publish to %s: %w", destination, err)
	}

	return PublishResult{Topic: destination, Timestamp: now}, nil
}

// Consume fetches messages from the topic within a consumer group and runs
// the handler with the configured concurrency. Offsets are committed on Ack.
func (k *Kafka) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	co := newConsumeOptions(opts...)
	if co.group == "" {
		return ErrKafkaGroupRequired
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.cfg.Brokers,
		GroupID:  co.group,
		Topic:    source,
		MinBytes: k.cfg.MinBytes,
		MaxBytes: k.cfg.MaxBytes,
	})
	defer reader.Close()

	workers := concurrencyOrDefault(co.concurrency)
	msgCh := make(chan kafka.Message)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range msgCh {
				k.handle(ctx, reader, handler, m, co.autoAck)
			}
		}()
	}

	var fetchErr error
	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				fetchErr = fmt.Errorf("messaging: kafka fetch from %s: %w", source, err)
			}
			break
		}
		select {
		case msgCh <- m:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}

	close(msgCh)
	wg.Wait()
	return fetchErr
}

func (k *Kafka) handle(ctx context.Context, reader *kafka.Reader, handler Handler, m kafka.Message, autoAck bool) {
	msg := &kafkaMessage{msg: m, reader: reader}
	err := callHandlerWithRecover(ctx, DriverKafka, func() error {
		return handler(ctx, msg)
	})
	if !autoAck {
		return
	}
	if err == nil {
		//nolint:errcheck // redelivery covers a failed commit
		msg.Ack(ctx)
	}
}

// Close shuts down all topic writers.
func (k *Kafka) Close() error {
	if !k.closed.CompareAndSwap(false, true) {
		return nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	var errs []error
	for topic, w := range k.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer %s: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}

type kafkaMessage struct {
	msg    kafka.Message
	reader *kafka.Reader
	acked  atomic.Bool
}

func (m *kafkaMessage) Body() []byte { return m.msg.Value }

func (m *kafkaMessage) Key() []byte { return m.msg.Key }

func (m *kafkaMessage) Headers() []Header {
	headers := make([]Header, 0, len(m.msg.Headers))
	for _, h := range m.msg.Headers {
		headers = append(headers, Header{Key: h.Key, Value: h.Value})
	}
	return headers
}

func (m *kafkaMessage) Attributes() map[string]string {
	attrs := make(map[string]string, len(m.msg.Headers))
	for _, h := range m.msg.Headers {
		attrs[h.Key] = string(h.Value)
	}
	return attrs
}

func (m *kafkaMessage) ID() string {
	return m.msg.Topic + "-" + strconv.Itoa(m.msg.Partition) + "-" + strconv.FormatInt(m.msg.Offset, 10)
}

func (m *kafkaMessage) Topic() string { return m.msg.Topic }

func (m *kafkaMessage) Timestamp() time.Time { return m.msg.Time }

func (m *kafkaMessage) Ack(ctx context.Context) error {
	if !m.acked.CompareAndSwap(false, true) {
		return nil
	}
	return m.reader.CommitMessages(ctx, m.msg)
}

// Nack leaves the offset uncommitted so the group redelivers the message.
func (m *kafkaMessage) Nack(_ context.Context) error { return nil }
