package dto

import "time"

// RegisterRequest creates a profile.
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,max=100"`
	StaffID  string `json:"staff_id"  binding:"required,max=20"`
	Email    string `json:"email"     binding:"required,email"`
	Password string `json:"password"  binding:"required,min=8,max=72"`
}

// LoginRequest authenticates a profile.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for new tokens.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // access token TTL in seconds
}

// UploadSignatureRequest stores the signed-image payload.
// Signature is base64-encoded PNG bytes.
type UploadSignatureRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// ProfileResponse is the public view of a profile.
type ProfileResponse struct {
	ProfileID    string    `json:"profile_id"`
	FullName     string    `json:"full_name"`
	StaffID      string    `json:"staff_id"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"is_admin"`
	HasSignature bool      `json:"has_signature"`
	CreatedAt    time.Time `json:"created_at"`
}
