package entity

import "time"

type User struct {
	ID          int64
	Email       string
	Password    string // hashed
	IsConfirmed bool
	IsActive    bool
	CreatedAt   time.Time
}

type UserProfile struct {
	UserID     int64
	FirstName  string
	LastName   string
	Phone      string
	Gender     Gender
	Type       AccountType
	Address    string
	City       string
	State      string
	Zipcode    string
	Country    string
	Business   string
	BusinessID string
}

// OTPSecrets is the fixed-shape secret record: one encrypted TOTP secret per
// purpose. Every column is populated or the record does not exist.
type OTPSecrets struct {
	UserID        int64
	Auth          []byte
	ResetPassword []byte
	Transactions  []byte
	Logout        []byte
}

// SecretFor returns the encrypted secret for the purpose.
func (s *OTPSecrets) SecretFor(p Purpose) []byte {
	switch p {
	case PurposeAuth:
		return s.Auth
	case PurposeResetPassword:
		return s.ResetPassword
	case PurposeTransactions:
		return s.Transactions
	case PurposeLogout:
		return s.Logout
	default:
		return nil
	}
}

// SetSecret stores the encrypted secret for the purpose.
func (s *OTPSecrets) SetSecret(p Purpose, ciphertext []byte) {
	switch p {
	case PurposeAuth:
		s.Auth = ciphertext
	case PurposeResetPassword:
		s.ResetPassword = ciphertext
	case PurposeTransactions:
		s.Transactions = ciphertext
	case PurposeLogout:
		s.Logout = ciphertext
	}
}

type OTPCode struct {
	ID         int64
	UserID     int64
	Purpose    Purpose
	Code       string // 6 decimal digits, zero padded
	IsVerified bool
	CreatedAt  time.Time
}

type RefreshToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	Revoked   bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ---- //

// UserRefreshToken joins a refresh token row with its owner for the refresh
// flow.
type UserRefreshToken struct {
	UserID          int64
	UserEmail       string
	UserIsConfirmed bool
	UserIsActive    bool
	RefreshID       int64
	Revoked         bool
	ExpiresAt       time.Time
}

// NewRegistration carries everything the registration transaction writes.
type NewRegistration struct {
	User    User
	Profile UserProfile
	Secrets OTPSecrets
}

// VerifyRegistration flips the OTP row and the account flags in one
// transaction. The code row update is a compare-and-swap on is_verified.
type VerifyRegistration struct {
	CodeID int64
	UserID int64
}
