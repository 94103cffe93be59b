package inbound

import (
	"context"

	"github.com/ademolaidowu/gezapay/internal/notification/usecase"
)

type uc interface {
	ConsumeOTPIssued(ctx context.Context, in usecase.ConsumeOTPIssuedInput) error
	ConsumeUserRegistered(ctx context.Context, in usecase.ConsumeUserRegisteredInput) error
}
