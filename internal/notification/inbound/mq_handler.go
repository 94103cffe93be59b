package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ademolaidowu/gezapay/internal/notification/usecase"
	"github.com/ademolaidowu/gezapay/internal/pkg/instrument"
	"github.com/ademolaidowu/gezapay/internal/pkg/messaging"
	"github.com/ademolaidowu/gezapay/internal/pkg/uid"
	"github.com/ademolaidowu/gezapay/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OTPIssuedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OTPIssuedNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: otp issued notification", "msg_id", msg.ID())

	var payload event.OTPIssuedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp issued notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeOTPIssued(ctx, usecase.ConsumeOTPIssuedInput{
		EventID:  payload.EventID,
		UserID:   payload.UserID,
		Email:    payload.Email,
		Purpose:  payload.Purpose,
		Code:     payload.Code,
		SendMode: payload.SendMode,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp issued", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) UserRegisteredNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "UserRegisteredNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: user registered notification", "msg_id", msg.ID())

	var payload event.UserRegisteredMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user registered notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeUserRegistered(ctx, usecase.ConsumeUserRegisteredInput{
		EventID: payload.EventID,
		UserID:  payload.UserID,
		Email:   payload.Email,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user registered", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}
