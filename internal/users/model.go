package users

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PasswordReset is a pending reset grant. Only the token hash is ever
// stored; the opaque token itself is handed to the requester once.
type PasswordReset struct {
	TokenHash string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
}
