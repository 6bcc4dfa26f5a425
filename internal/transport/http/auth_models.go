package http

import (
	"time"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Message string `json:"message" example:"Invalid email or password"`
}

// AuthUser models the sanitized user representation returned by auth endpoints.
type AuthUser struct {
	ID        string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Name      string    `json:"name" example:"Anna"`
	Email     string    `json:"email" example:"anna@example.com"`
	ImageURL  *string   `json:"imageUrl,omitempty" example:"https://lh3.googleusercontent.com/a/photo"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-01T12:00:00Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2024-01-02T09:30:00Z"`
}

// AuthTokenResponse is returned by endpoints that issue JWT tokens.
type AuthTokenResponse struct {
	Message   string   `json:"message" example:"Login successful"`
	Token     string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt string   `json:"expiresAt" example:"2024-01-08T09:30:00Z"`
	User      AuthUser `json:"user"`
}

// AuthUserResponse wraps a user object.
type AuthUserResponse struct {
	User AuthUser `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name" example:"Anna"`
	Email    string `json:"email" example:"anna@example.com"`
	Password string `json:"password" example:"Tatry2024!"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"anna@example.com"`
	Password string `json:"password" example:"Tatry2024!"`
}

// GoogleLoginRequest carries the Google ID token for login.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

func toAuthUser(user *domain.User) AuthUser {
	return AuthUser{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		ImageURL:  user.ImageURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
