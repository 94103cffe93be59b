package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ademolaidowu/gezapay/internal/pkg/config"
	"github.com/ademolaidowu/gezapay/internal/pkg/goroutine"
	"github.com/ademolaidowu/gezapay/internal/pkg/instrument"
	"github.com/ademolaidowu/gezapay/internal/pkg/messaging"
	"github.com/ademolaidowu/gezapay/internal/pkg/uid"
	"github.com/ademolaidowu/gezapay/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabledConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	// name doubles as the nsq channel, nats queue group, kafka group, and
	// pubsub subscription so each broker delivers one copy per consumer.
	var consumers = []struct {
		name    string
		topic   string
		handler messaging.Handler
	}{
		{
			name:    event.OTPIssuedConsumerNotification,
			topic:   event.OTPIssuedDestination,
			handler: mqHandler.OTPIssuedNotification,
		},
		{
			name:    event.UserRegisteredConsumerNotification,
			topic:   event.UserRegisteredDestination,
			handler: mqHandler.UserRegisteredNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enabledConsumerNames) > 0 && slices.Contains(enabledConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.name),
					messaging.WithQueueGroup(consumer.name),
					messaging.WithGroup(consumer.name),
					messaging.WithSubscription(consumer.name),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
