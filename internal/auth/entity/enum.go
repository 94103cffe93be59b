package entity

import (
	"errors"
	"strings"
)

var (
	ErrPurposeUnknown  = errors.New("auth: otp purpose is unknown")
	ErrSendModeUnknown = errors.New("auth: send mode is unknown")
)

// Purpose is the closed category an OTP is issued for. Each purpose has its
// own independent secret.
type Purpose string

const (
	PurposeAuth          Purpose = "auth"
	PurposeResetPassword Purpose = "reset_password"
	PurposeTransactions  Purpose = "transactions"
	PurposeLogout        Purpose = "logout"
)

// Purposes lists every valid purpose in a stable order.
func Purposes() []Purpose {
	return []Purpose{PurposeAuth, PurposeResetPassword, PurposeTransactions, PurposeLogout}
}

// ParsePurpose rejects anything outside the closed set.
func ParsePurpose(raw string) (Purpose, error) {
	switch p := Purpose(strings.ToLower(strings.TrimSpace(raw))); p {
	case PurposeAuth, PurposeResetPassword, PurposeTransactions, PurposeLogout:
		return p, nil
	default:
		return "", ErrPurposeUnknown
	}
}

func (p Purpose) String() string { return string(p) }

// SendMode selects the OTP delivery channel.
type SendMode string

const (
	SendModeMail SendMode = "mail"
	SendModeSMS  SendMode = "sms"
)

func ParseSendMode(raw string) (SendMode, error) {
	switch m := SendMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case SendModeMail, SendModeSMS:
		return m, nil
	case "":
		return SendModeMail, nil
	default:
		return "", ErrSendModeUnknown
	}
}

func (m SendMode) String() string { return string(m) }

// LogoutMode selects single-session or all-sessions revocation.
type LogoutMode string

const (
	LogoutModeCurrent LogoutMode = "current"
	LogoutModeAll     LogoutMode = "all"
)

func ParseLogoutMode(raw string) (LogoutMode, bool) {
	switch m := LogoutMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case LogoutModeCurrent, LogoutModeAll:
		return m, true
	case "":
		return LogoutModeCurrent, true
	default:
		return "", false
	}
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOthers Gender = "OTHERS"
)

func ParseGender(raw string) (Gender, bool) {
	switch g := Gender(strings.ToUpper(strings.TrimSpace(raw))); g {
	case GenderMale, GenderFemale, GenderOthers:
		return g, true
	default:
		return "", false
	}
}

type AccountType string

const (
	AccountTypeIndividual AccountType = "INDIVIDUAL"
	AccountTypeBusiness   AccountType = "BUSINESS"
)

func ParseAccountType(raw string) (AccountType, bool) {
	switch t := AccountType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case AccountTypeIndividual, AccountTypeBusiness:
		return t, true
	default:
		return "", false
	}
}
