package inbound

import (
	"context"

	"github.com/ademolaidowu/gezapay/internal/auth/usecase"
	"github.com/ademolaidowu/gezapay/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) error
	RegisterSend(ctx context.Context, in usecase.RegisterSendInput) error
	RegisterVerify(ctx context.Context, in usecase.RegisterVerifyInput) error
	RegisterInfo(ctx context.Context, in usecase.RegisterInfoInput) error

	OTPRequest(ctx context.Context, in usecase.OTPRequestInput) error

	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	RefreshToken(ctx context.Context, in usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error)
	Logout(ctx context.Context, in usecase.LogoutInput) error

	SecretRotate(ctx context.Context, in usecase.SecretRotateInput) error
	SecretReset(ctx context.Context, in usecase.SecretResetInput) error
	SecretRemove(ctx context.Context, in usecase.SecretRemoveInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Registration & confirmation
	r.POST("/api/v1/auth/register", end.Register)
	r.POST("/api/v1/auth/register/send", end.RegisterSend)
	r.POST("/api/v1/auth/register/verify", end.RegisterVerify)
	r.PUT("/api/v1/auth/register/info", end.RegisterInfo) // need authenticated

	// OTP issuance (need authenticated)
	r.POST("/api/v1/auth/otp", end.OTPRequest)

	// Sessions
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/refresh", end.RefreshToken)
	r.POST("/api/v1/auth/logout", end.Logout) // need authenticated

	// Secret administration (need authenticated & authorization)
	r.POST("/api/v1/auth/admin/users/:id/secrets/rotate", end.SecretRotate)
	r.POST("/api/v1/auth/admin/users/:id/secrets/reset", end.SecretReset)
	r.DELETE("/api/v1/auth/admin/users/:id/secrets", end.SecretRemove)
}
