package entity

import "testing"

func TestParsePurpose(t *testing.T) {
	tests := []struct {
		raw     string
		want    Purpose
		wantErr bool
	}{
		{"auth", PurposeAuth, false},
		{"RESET_PASSWORD", PurposeResetPassword, false},
		{"  transactions ", PurposeTransactions, false},
		{"logout", PurposeLogout, false},
		{"", "", true},
		{"mfa", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePurpose(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePurpose(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePurpose(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestPurposesCoversEverySecretColumn(t *testing.T) {
	if got := len(Purposes()); got != 4 {
		t.Fatalf("Purposes() length = %d, want 4", got)
	}
}

func TestParseSendMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    SendMode
		wantErr bool
	}{
		{"", SendModeMail, false},
		{"mail", SendModeMail, false},
		{"SMS", SendModeSMS, false},
		{"pigeon", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSendMode(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSendMode(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSendMode(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseLogoutMode(t *testing.T) {
	tests := []struct {
		raw  string
		want LogoutMode
		ok   bool
	}{
		{"", LogoutModeCurrent, true},
		{"current", LogoutModeCurrent, true},
		{"ALL", LogoutModeAll, true},
		{"everything", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLogoutMode(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseLogoutMode(%q) = %q, %v, want %q, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseGender(t *testing.T) {
	if g, ok := ParseGender(" female "); !ok || g != GenderFemale {
		t.Fatalf("ParseGender(female) = %q, %v", g, ok)
	}
	if _, ok := ParseGender("unknown"); ok {
		t.Fatal("ParseGender(unknown) must fail")
	}
}

func TestParseAccountType(t *testing.T) {
	if at, ok := ParseAccountType("business"); !ok || at != AccountTypeBusiness {
		t.Fatalf("ParseAccountType(business) = %q, %v", at, ok)
	}
	if _, ok := ParseAccountType("charity"); ok {
		t.Fatal("ParseAccountType(charity) must fail")
	}
}
