package inbound

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type RegisterSendRequest struct {
	Email string `json:"email"`
}

type RegisterSendResponse struct{}

func (RegisterSendResponse) Message() string {
	return "A verification code has been sent if the email is pending confirmation"
}

type RegisterVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type RegisterInfoRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Gender     string `json:"gender"`
	Type       string `json:"type"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zipcode    string `json:"zipcode"`
	Country    string `json:"country"`
	Business   string `json:"business"`
	BusinessID string `json:"business_id"`
}

type OTPRequestRequest struct {
	Purpose  string `json:"purpose"`
	SendMode string `json:"send_mode"`
}

type OTPRequestResponse struct{}

func (OTPRequestResponse) Message() string {
	return "A verification code has been sent"
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type LogoutRequest struct {
	Mode         string `json:"mode"`
	RefreshToken string `json:"refresh_token"`
}

type SecretRotateRequest struct {
	Purpose string `json:"purpose"`
}
