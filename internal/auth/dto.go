package auth

import (
	"github.com/partshub/autospares-backend/internal/users"
)

// RegisterRequest is the customer sign-up payload.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=40"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Password  string `json:"password" validate:"required"`
}

// LoginRequest carries customer or staff credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the minted token pair and the authenticated user.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// SessionKeyResponse carries the anonymous cart session key.
type SessionKeyResponse struct {
	SessionKey string `json:"session_key"`
}

// CreateStoreAdminRequest is the super-admin payload for provisioning a staff
// account. When Password is empty a temporary one is generated and returned.
type CreateStoreAdminRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=40"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Password  string `json:"password,omitempty"`
}

// CreatedStoreAdminDTO echoes the new staff account. TempPassword is only set
// when the password was generated server-side.
type CreatedStoreAdminDTO struct {
	User         *users.UserDTO `json:"user"`
	TempPassword string         `json:"temp_password,omitempty"`
}
