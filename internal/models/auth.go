package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a staff member.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued tokens and staff info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	Staff        StaffInfo `json:"staff"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// StaffInfo describes the authenticated staff member in responses.
type StaffInfo struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      StaffRole `json:"role"`
	Buildings []string  `json:"buildings"`
}

// JWTClaims represents the JWT payload for access tokens. Buildings carries
// the ordered membership list so scope checks never need a directory read.
type JWTClaims struct {
	StaffID   string    `json:"staff_id"`
	Role      StaffRole `json:"role"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Buildings []string  `json:"buildings"`
	jwt.RegisteredClaims
}

// PrimaryBuilding returns the caller's first building membership.
func (c JWTClaims) PrimaryBuilding() string {
	if len(c.Buildings) == 0 {
		return ""
	}
	return c.Buildings[0]
}
