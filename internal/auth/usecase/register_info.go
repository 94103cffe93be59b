package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

type RegisterInfoInput struct {
	FirstName  string `validate:"required,min=2,max=50,alphaspace"`
	LastName   string `validate:"required,min=2,max=50,alphaspace"`
	Phone      string `validate:"required,min=7,max=20"`
	Gender     string `validate:"required"`
	Type       string `validate:"required"`
	Address    string `validate:"required,max=255"`
	City       string `validate:"required,max=100"`
	State      string `validate:"required,max=100"`
	Zipcode    string `validate:"required,max=20"`
	Country    string `validate:"required,max=100"`
	Business   string `validate:"omitempty,max=100"`
	BusinessID string `validate:"omitempty,max=100"`
}

// RegisterInfo completes the profile row created at registration. Business
// accounts must carry both business fields; the check lives here at the
// orchestration boundary, not in the entity.
func (s *Usecase) RegisterInfo(ctx context.Context, in RegisterInfoInput) error {
	ctx, span := s.startSpan(ctx, "RegisterInfo")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	gender, ok := entity.ParseGender(in.Gender)
	if !ok {
		return goerror.NewInvalidInput(nil, "gender", "must be one of MALE, FEMALE, OTHERS")
	}

	accountType, ok := entity.ParseAccountType(in.Type)
	if !ok {
		return goerror.NewInvalidInput(nil, "type", "must be one of INDIVIDUAL, BUSINESS")
	}

	if accountType == entity.AccountTypeBusiness {
		if strings.TrimSpace(in.Business) == "" || strings.TrimSpace(in.BusinessID) == "" {
			return goerror.NewInvalidInput(nil,
				"business", "required for business accounts",
				"business_id", "required for business accounts",
			)
		}
	}

	err = s.repoDB.UpdateUserProfile(ctx, entity.UserProfile{
		UserID:     clm.UserID,
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Phone:      strings.TrimSpace(in.Phone),
		Gender:     gender,
		Type:       accountType,
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		Zipcode:    strings.TrimSpace(in.Zipcode),
		Country:    strings.TrimSpace(in.Country),
		Business:   strings.TrimSpace(in.Business),
		BusinessID: strings.TrimSpace(in.BusinessID),
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "profile row is missing", "user_id", clm.UserID)
		return goerror.NewBusiness("Profile not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update user profile", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
