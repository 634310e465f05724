package models

import "time"

// User represents a row in the users table. The bcrypt hash is never
// serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns the projection of a user that is safe to send to clients:
// id, username and email (null when unset).
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// PublicUser is the client-facing view of a user.
type PublicUser struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
}

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangeEmailRequest is the JSON body for POST /auth/change-email.
type ChangeEmailRequest struct {
	NewEmail string `json:"newEmail"`
}

// DeleteAccountRequest is the JSON body for POST /auth/delete-account.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}
