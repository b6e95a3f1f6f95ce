package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the account role reported by the backend
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Session is the explicit auth state passed to route guards. Token is the
// backend bearer token and never leaves the server.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserID    int       `json:"userId"`
	Role      Role      `json:"role"`
	UserName  string    `json:"userName"`
	UserPhoto string    `json:"userPhoto"`
	IsBanned  bool      `json:"isBanned"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionClaims are the JWT claims issued to the browser
type SessionClaims struct {
	SessionID string `json:"sid"`
	Role      Role   `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for email/password login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the request body for account creation
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// GoogleLoginRequest carries the Google ID token credential
type GoogleLoginRequest struct {
	Credential string `json:"credential"`
}

// BackendUser is the profile returned alongside a backend token and by
// /api/users/me
type BackendUser struct {
	UserID       int    `json:"user_id"`
	Role         Role   `json:"role"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Email        string `json:"email,omitempty"`
	UserPhotoURL string `json:"user_photo_url"`
	IsBanned     bool   `json:"isBanned"`
}

// BackendAuthResponse is returned by /api/auth/login, /register and /google
type BackendAuthResponse struct {
	Token string      `json:"token"`
	User  BackendUser `json:"user"`
}

// LoginResponse is returned to the browser after a successful sign-in
type LoginResponse struct {
	Token     string `json:"token"`
	Role      Role   `json:"role"`
	UserName  string `json:"user_name"`
	UserPhoto string `json:"user_photo"`
	IsBanned  bool   `json:"isBanned"`
}

// AdminUser is one row of GET /api/admin/users
type AdminUser struct {
	UserID    int    `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	IsBanned  bool   `json:"isBanned"`
}
