package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims carries the authenticated user inside access tokens.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

// RegisterRequest describes the signup payload.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	FullName     string `json:"full_name" validate:"required"`
	ReferralCode string `json:"referral_code"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RegisterResponse reports the created account and what happened to the
// submitted referral code, if any.
type RegisterResponse struct {
	User             UserInfo `json:"user"`
	ReferralRecorded bool     `json:"referral_recorded"`
	ReferralNote     string   `json:"referral_note,omitempty"`
}

// LoginRequest describes the login payload.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse carries issued tokens and basic user info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
	User         UserInfo  `json:"user"`
}

// UserInfo is the public shape of a user.
type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// RefreshTokenRequest exchanges a refresh token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse carries the rotated token pair.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ChangePasswordRequest describes the change password payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPasswordRequest initiates the forgot password flow.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// EmailVerification is the external validation service's verdict on a
// signup email.
type EmailVerification struct {
	Valid  bool   `json:"is_valid"`
	Banned bool   `json:"is_banned"`
	Reason string `json:"reason"`
}
