package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
	)
	return err
}

func (r *PGRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	const query = `
SELECT id, username, email, password_hash, created_at, updated_at
FROM users
WHERE username = $1
LIMIT 1`
	return r.scanUser(r.DB.QueryRowContext(ctx, query, username))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT id, username, email, password_hash, created_at, updated_at
FROM users
WHERE email = $1
LIMIT 1`
	return r.scanUser(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	const query = `
UPDATE users
SET password_hash = $2, updated_at = now()
WHERE username = $1`
	result, err := r.DB.ExecContext(ctx, query, username, passwordHash)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (username) DO UPDATE SET
  email = EXCLUDED.email,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
	)
	return err
}

func (r *PGRepo) scanUser(row *sql.Row) (User, error) {
	var user User
	var updatedAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	} else {
		user.UpdatedAt = time.Now().UTC()
	}
	return user, nil
}

type ResetPGRepo struct {
	DB *sql.DB
}

func (r *ResetPGRepo) Create(ctx context.Context, reset PasswordReset) error {
	const deleteQuery = `DELETE FROM password_resets WHERE username = $1`
	if _, err := r.DB.ExecContext(ctx, deleteQuery, reset.Username); err != nil {
		return err
	}
	const insertQuery = `
INSERT INTO password_resets (token_hash, username, expires_at, created_at)
VALUES ($1, $2, $3, now())`
	_, err := r.DB.ExecContext(ctx, insertQuery,
		reset.TokenHash,
		reset.Username,
		reset.ExpiresAt,
	)
	return err
}

func (r *ResetPGRepo) GetByTokenHash(ctx context.Context, tokenHash string) (PasswordReset, error) {
	const query = `
SELECT token_hash, username, expires_at, created_at
FROM password_resets
WHERE token_hash = $1
LIMIT 1`
	var reset PasswordReset
	err := r.DB.QueryRowContext(ctx, query, tokenHash).Scan(
		&reset.TokenHash,
		&reset.Username,
		&reset.ExpiresAt,
		&reset.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PasswordReset{}, ErrNotFound
		}
		return PasswordReset{}, err
	}
	return reset, nil
}

func (r *ResetPGRepo) Delete(ctx context.Context, tokenHash string) error {
	const query = `DELETE FROM password_resets WHERE token_hash = $1`
	_, err := r.DB.ExecContext(ctx, query, tokenHash)
	return err
}
