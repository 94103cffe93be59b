// Package otp generates and checks time-based one-time passwords (RFC 6238).
//
// Codes here are delivered out of band (email), not read from an
// authenticator app, so the validation window is exact: a code is accepted
// only during the time step it was generated in.
package otp

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const secretSize = 20 // RFC 4226 recommendation

// OTP is the contract for TOTP operations.
type OTP interface {
	// GenerateSecret creates a new random base32 secret (no padding).
	GenerateSecret() (string, error)
	// GenerateCode derives the code for the time step containing at.
	GenerateCode(secret string, at time.Time) (string, error)
	// Validate checks a code against the exact time step containing at.
	// A non-nil error means the secret itself is unusable, not that the
	// code is wrong.
	Validate(code, secret string, at time.Time) (bool, error)
}

// TOTP implements OTP with SHA-1 and 6 digits.
type TOTP struct {
	period uint
	skew   uint
	digits otp.Digits
}

// NewTOTP constructs a TOTP engine. period of 0 falls back to 30 seconds.
// skew is the number of adjacent time steps accepted on either side; 0 means
// only the current step is valid.
func NewTOTP(period, skew uint) *TOTP {
	if period == 0 {
		period = 30
	}

	return &TOTP{
		period: period,
		skew:   skew,
		digits: otp.DigitsSix,
	}
}

// GenerateSecret returns a fresh random secret, base32 without padding.
func (t *TOTP) GenerateSecret() (string, error) {
	buf := make([]byte, secretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("otp: generate secret: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

// GenerateCode derives the code for the time step containing at.
func (t *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, t.opts())
}

// Validate checks a code at the given time.
func (t *TOTP) Validate(code, secret string, at time.Time) (bool, error) {
	ok, err := totp.ValidateCustom(code, secret, at, t.opts())
	if err != nil {
		return false, fmt.Errorf("otp: validate: %w", err)
	}
	return ok, nil
}

func (t *TOTP) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    t.period,
		Skew:      t.skew,
		Digits:    t.digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}
