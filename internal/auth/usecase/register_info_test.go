package usecase

import (
	"context"
	"testing"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

func validInfo() RegisterInfoInput {
	return RegisterInfoInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+2348012345678",
		Gender:    "FEMALE",
		Type:      "INDIVIDUAL",
		Address:   "1 Marina Road",
		City:      "Lagos",
		State:     "Lagos",
		Zipcode:   "100001",
		Country:   "NG",
	}
}

func TestRegisterInfo(t *testing.T) {
	f := newFixture(t)
	userID := f.confirm(t, "info@example.com")

	in := validInfo()
	in.FirstName = "  Ada "
	in.City = " Lagos  "

	if err := f.uc.RegisterInfo(authCtx(userID, "info@example.com"), in); err != nil {
		t.Fatalf("RegisterInfo() error = %v", err)
	}

	profile := f.repo.profiles[userID]
	if profile.FirstName != "Ada" || profile.City != "Lagos" {
		t.Fatalf("profile fields not trimmed: %+v", profile)
	}
	if profile.Gender != entity.GenderFemale || profile.Type != entity.AccountTypeIndividual {
		t.Fatalf("profile enums = %s/%s", profile.Gender, profile.Type)
	}
}

func TestRegisterInfoBusinessAccount(t *testing.T) {
	f := newFixture(t)
	userID := f.confirm(t, "info@example.com")
	ctx := authCtx(userID, "info@example.com")

	in := validInfo()
	in.Type = "BUSINESS"

	// Both business fields are mandatory for business accounts.
	assertInvalidInput(t, f.uc.RegisterInfo(ctx, in))

	in.Business = "Gezapay Ltd"
	in.BusinessID = "RC-123456"
	if err := f.uc.RegisterInfo(ctx, in); err != nil {
		t.Fatalf("RegisterInfo() error = %v", err)
	}

	profile := f.repo.profiles[userID]
	if profile.Business != "Gezapay Ltd" || profile.BusinessID != "RC-123456" {
		t.Fatalf("business fields not stored: %+v", profile)
	}
}

func TestRegisterInfoMissingProfile(t *testing.T) {
	f := newFixture(t)
	userID := f.confirm(t, "info@example.com")
	delete(f.repo.profiles, userID)

	err := f.uc.RegisterInfo(authCtx(userID, "info@example.com"), validInfo())
	assertBusinessError(t, err, goerror.CodeNotFound, "Profile not found")
}

func TestRegisterInfoUnauthenticated(t *testing.T) {
	f := newFixture(t)

	err := f.uc.RegisterInfo(context.Background(), validInfo())
	assertBusinessError(t, err, goerror.CodeUnauthorized, "Authentication required")
}

func TestRegisterInfoInvalidInput(t *testing.T) {
	f := newFixture(t)
	userID := f.confirm(t, "info@example.com")
	ctx := authCtx(userID, "info@example.com")

	tests := []struct {
		name   string
		mutate func(*RegisterInfoInput)
	}{
		{"numeric first name", func(in *RegisterInfoInput) { in.FirstName = "Ada99" }},
		{"short phone", func(in *RegisterInfoInput) { in.Phone = "123" }},
		{"unknown gender", func(in *RegisterInfoInput) { in.Gender = "YES" }},
		{"unknown type", func(in *RegisterInfoInput) { in.Type = "CHARITY" }},
		{"missing country", func(in *RegisterInfoInput) { in.Country = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInfo()
			tt.mutate(&in)
			assertInvalidInput(t, f.uc.RegisterInfo(ctx, in))
		})
	}
}
