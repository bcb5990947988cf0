package dto

// LoginRequest is a login attempt by name and plaintext password.
type LoginRequest struct {
	Role     string `json:"role" validate:"required,oneof=student teacher"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"max=128"`
}

// SessionResponse describes the authenticated principal.
type SessionResponse struct {
	Role   string `json:"role"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}
