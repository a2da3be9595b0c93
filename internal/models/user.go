package models

import (
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	UserTypeBuilder = "builder"
	UserTypeAgent   = "agent"
	UserTypeAdmin   = "admin"
)

var UserTypes = []string{UserTypeBuilder, UserTypeAgent, UserTypeAdmin}

// User matches the users table in internal/database/migrations.go.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Password     string     `json:"-"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone"`
	UserType     string     `json:"user_type"`
	IsVerified   bool       `json:"is_verified"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) Prepare() {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = html.EscapeString(strings.ToLower(strings.TrimSpace(u.Email)))
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	if u.UserType == "" {
		u.UserType = UserTypeAgent
	}
}
