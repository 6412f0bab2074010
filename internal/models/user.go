package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a journal owner and forum participant
type User struct {
	ID                        int64     `json:"id" db:"id"`
	Name                      string    `json:"name" db:"name"`
	Email                     string    `json:"email" db:"email"`
	PasswordHash              string    `json:"-" db:"password_hash"`
	Phone                     *string   `json:"phone,omitempty" db:"phone"`
	Location                  *string   `json:"location,omitempty" db:"location"`
	ReceiveEmailNotifications bool      `json:"receive_email_notifications" db:"receive_email_notifications"`
	CreatedAt                 time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest for account creation
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest for token issue
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SettingsRequest updates profile settings
type SettingsRequest struct {
	Name                      string  `json:"name" binding:"required"`
	Email                     string  `json:"email" binding:"required,email"`
	Phone                     *string `json:"phone"`
	Location                  *string `json:"location"`
	ReceiveEmailNotifications bool    `json:"receive_email_notifications"`
}

// Claims carried in issued tokens
type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
