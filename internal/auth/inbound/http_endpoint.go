package inbound

import (
	"github.com/ademolaidowu/gezapay/internal/auth/usecase"
	"github.com/ademolaidowu/gezapay/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for registration, OTP, and session
// workflows.
type HTTPEndpoint struct {
	uc uc
}

// Register creates a new account and sends the first confirmation code.
// @Summary Register account
// @Description Creates an unconfirmed account and emails a confirmation code.
// @Tags Auth
// @Accept json
// @Param request body RegisterRequest true "Registration payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Email already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
}

// RegisterSend re-sends the confirmation code.
// @Summary Resend confirmation code
// @Description Sends a new confirmation code when the email is pending confirmation.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterSendRequest true "Resend payload"
// @Success 200 {object} router.successResponse "Resend result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Email already verified"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/register/send [post]
func (h *HTTPEndpoint) RegisterSend(r *router.Request) (any, error) {
	var req RegisterSendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RegisterSend(r.Context(), usecase.RegisterSendInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return RegisterSendResponse{}, nil
}

// RegisterVerify confirms an account with a submitted code.
// @Summary Verify email
// @Description Confirms the account when the submitted code matches the latest issued code.
// @Tags Auth
// @Accept json
// @Param request body RegisterVerifyRequest true "Verification payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired code"
// @Failure 409 {object} router.errorResponse "Email already verified"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/register/verify [post]
func (h *HTTPEndpoint) RegisterVerify(r *router.Request) (any, error) {
	var req RegisterVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.RegisterVerify(r.Context(), usecase.RegisterVerifyInput{
		Email: req.Email,
		Code:  req.Code,
	})
}

// RegisterInfo completes the authenticated user's profile.
// @Summary Complete profile
// @Description Fills the profile row created at registration. Business accounts require business and business_id.
// @Tags Auth
// @Accept json
// @Param request body RegisterInfoRequest true "Profile payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/register/info [put]
func (h *HTTPEndpoint) RegisterInfo(r *router.Request) (any, error) {
	var req RegisterInfoRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.RegisterInfo(r.Context(), usecase.RegisterInfoInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Gender:     req.Gender,
		Type:       req.Type,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		Zipcode:    req.Zipcode,
		Country:    req.Country,
		Business:   req.Business,
		BusinessID: req.BusinessID,
	})
}

// OTPRequest issues a one-time code for the authenticated user.
// @Summary Request OTP
// @Description Issues a code for the given purpose and delivers it by mail (sms falls back to mail).
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body OTPRequestRequest true "OTP request payload"
// @Success 200 {object} router.successResponse "Issue result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 409 {object} router.errorResponse "Email already verified"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/otp [post]
func (h *HTTPEndpoint) OTPRequest(r *router.Request) (any, error) {
	var req OTPRequestRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.OTPRequest(r.Context(), usecase.OTPRequestInput{
		Purpose:  req.Purpose,
		SendMode: req.SendMode,
	}); err != nil {
		return nil, err
	}

	return OTPRequestResponse{}, nil
}

// Login authenticates credentials and returns a token pair.
// @Summary Login
// @Description Validates credentials and returns access and refresh tokens.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 403 {object} router.errorResponse "Unverified or blocked account"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// RefreshToken issues a new access token from a refresh token.
// @Summary Refresh access token
// @Description Exchanges a valid refresh token for a new access token. The refresh token is not rotated.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh payload"
// @Success 200 {object} router.successResponse{data=RefreshTokenResponse} "Refresh result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired token"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/refresh [post]
func (h *HTTPEndpoint) RefreshToken(r *router.Request) (any, error) {
	var req RefreshTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RefreshToken(r.Context(), usecase.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return nil, err
	}

	return RefreshTokenResponse{AccessToken: resp.AccessToken}, nil
}

// Logout revokes the supplied refresh token or every outstanding one.
// @Summary Logout
// @Description Revokes the supplied refresh token (mode=current) or all outstanding tokens (mode=all).
// @Tags Auth
// @Accept json
// @Param request body LogoutRequest true "Logout payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required or invalid token"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	var req LogoutRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.Logout(r.Context(), usecase.LogoutInput{
		Mode:         req.Mode,
		RefreshToken: req.RefreshToken,
	})
}

// SecretRotate replaces one purpose's secret for a user.
// @Summary Rotate a user's OTP secret
// @Description Replaces the secret for one purpose, invalidating outstanding codes derived from it.
// @Tags Auth, Admin
// @Accept json
// @Param id path int true "User ID"
// @Param request body SecretRotateRequest true "Rotate payload"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Account not allowed"
// @Failure 404 {object} router.errorResponse "Secret record not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/admin/users/{id}/secrets/rotate [post]
func (h *HTTPEndpoint) SecretRotate(r *router.Request) (any, error) {
	userID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req SecretRotateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.SecretRotate(r.Context(), usecase.SecretRotateInput{
		UserID:  userID,
		Purpose: req.Purpose,
	})
}

// SecretReset regenerates the full secret record for a user.
// @Summary Reset a user's OTP secrets
// @Description Regenerates all four purpose secrets, invalidating every outstanding code.
// @Tags Auth, Admin
// @Param id path int true "User ID"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Account not allowed"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/admin/users/{id}/secrets/reset [post]
func (h *HTTPEndpoint) SecretReset(r *router.Request) (any, error) {
	userID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.SecretReset(r.Context(), usecase.SecretResetInput{UserID: userID})
}

// SecretRemove deletes a user's secret record.
// @Summary Remove a user's OTP secrets
// @Description Deletes the secret record, invalidating every outstanding code; the next issuance regenerates it.
// @Tags Auth, Admin
// @Param id path int true "User ID"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Account not allowed"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/admin/users/{id}/secrets [delete]
func (h *HTTPEndpoint) SecretRemove(r *router.Request) (any, error) {
	userID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.SecretRemove(r.Context(), usecase.SecretRemoveInput{UserID: userID})
}
