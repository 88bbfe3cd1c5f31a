package models

import "time"

// User represents a row in the PostgreSQL users table.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialize
	IsAdmin      bool      `json:"is_admin"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatar_url"`
	AvatarKey    string    `json:"-"`
	ResetToken   string    `json:"-"`
	ResetExpires time.Time `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterForm is the sign-up form body.
type RegisterForm struct {
	Username  string `validate:"required,min=3,max=50"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=8"`
	AdminCode string
}

// LoginForm is the login form body.
type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// ProfileForm carries the editable profile fields.
type ProfileForm struct {
	Email string `validate:"required,email"`
	Bio   string `validate:"max=2000"`
}
