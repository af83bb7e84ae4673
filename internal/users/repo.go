package users

import "context"

type Repo interface {
	Create(ctx context.Context, user User) error
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	Upsert(ctx context.Context, user User) error
}

// ResetRepo stores pending password resets. Creating a reset for a
// username replaces any earlier one, so at most one token is live per
// user.
type ResetRepo interface {
	Create(ctx context.Context, reset PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (PasswordReset, error)
	Delete(ctx context.Context, tokenHash string) error
}
