package types

import "github.com/google/uuid"

// SignupRequest is the body accepted by POST /api/auth/signup.
type SignupRequest struct {
	Username string `json:"username,omitempty" example:"johndoe"`
	Email    string `json:"email" example:"john.doe@example.com"`
	Password string `json:"password" example:"secret123"`
	Role     Role   `json:"role,omitempty" example:"user"` // Defaults server-side when empty.
}

// SignupResponse is returned with 201 after a successful signup.
type SignupResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	Token    string    `json:"token"`
}

// LoginRequest is the body accepted by POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"john.doe@example.com"`
	Password string `json:"password" example:"secret123"`
}

// LoginResponse is returned with 200 after a successful login.
type LoginResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
	Token string    `json:"token"`
}

// Response represents a generic API response for success or error messages.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ProfileUpdatedResponse is returned by PUT /api/auth/profile.
type ProfileUpdatedResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}
