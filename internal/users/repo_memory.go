package users

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu         sync.RWMutex
	byUsername map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byUsername: make(map[string]User)}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUsername[user.Username]; ok {
		return ErrUsernameTaken
	}
	for _, u := range r.byUsername {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byUsername[user.Username] = user
	return nil
}

func (r *MemoryRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byUsername[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byUsername {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byUsername[username]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	r.byUsername[username] = user
	return nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	existing, ok := r.byUsername[user.Username]
	if ok {
		existing.Email = user.Email
		existing.UpdatedAt = now
		r.byUsername[user.Username] = existing
		return nil
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byUsername[user.Username] = user
	return nil
}

type MemoryResetRepo struct {
	mu      sync.RWMutex
	byToken map[string]PasswordReset
}

func NewMemoryResetRepo() *MemoryResetRepo {
	return &MemoryResetRepo{byToken: make(map[string]PasswordReset)}
}

func (r *MemoryResetRepo) Create(ctx context.Context, reset PasswordReset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, existing := range r.byToken {
		if existing.Username == reset.Username {
			delete(r.byToken, hash)
		}
	}
	if reset.CreatedAt.IsZero() {
		reset.CreatedAt = time.Now().UTC()
	}
	r.byToken[reset.TokenHash] = reset
	return nil
}

func (r *MemoryResetRepo) GetByTokenHash(ctx context.Context, tokenHash string) (PasswordReset, error) {
	if err := ctx.Err(); err != nil {
		return PasswordReset{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	reset, ok := r.byToken[tokenHash]
	if !ok {
		return PasswordReset{}, ErrNotFound
	}
	return reset, nil
}

func (r *MemoryResetRepo) Delete(ctx context.Context, tokenHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byToken, tokenHash)
	return nil
}
