package domain

import (
	"time"
)

// User represents a registered user in the system.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Nickname     string    `json:"nickname"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser builds a user record with the default role. The caller supplies
// the clock so timestamp behavior is testable.
func NewUser(email, passwordHash, nickname string, now time.Time) *User {
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		Nickname:     nickname,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TokenPair holds an access token and the raw refresh token issued with it.
// The raw refresh token exists only in this in-flight value; storage keeps
// its hash.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
}
