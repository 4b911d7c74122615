package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Email     string
	FullName  string
	Role      string

	PasswordHash string

	// Hash of the latest issued refresh token
	// nil means the user has no active session
	RefreshTokenHash *string
}

// Scrubbed returns a copy safe to hand back to callers: no credential material
func (u User) Scrubbed() User {
	u.PasswordHash = ""
	u.RefreshTokenHash = nil
	return u
}
