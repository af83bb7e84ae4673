package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"docmind-backend/internal/shared/auth"
	"docmind-backend/internal/shared/util"
)

const defaultResetTTL = time.Hour

type Service struct {
	Repo     Repo
	Resets   ResetRepo
	TokenTTL time.Duration
	ResetTTL time.Duration
}

func NewService(repo Repo, resets ResetRepo) *Service {
	return &Service{Repo: repo, Resets: resets}
}

// Register creates a new account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, username, email, password string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return User{}, errors.New("username, email and password are required")
	}

	if _, err := s.Repo.GetByUsername(ctx, username); err == nil {
		return User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup username: %w", err)
	}
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Authenticate checks credentials and returns a signed access token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, error) {
	if s == nil || s.Repo == nil {
		return "", errors.New("users service not configured")
	}
	user, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	claims := auth.Claims{Sub: user.Username, Email: user.Email}
	if s.TokenTTL > 0 {
		claims.Exp = time.Now().UTC().Add(s.TokenTTL).Unix()
	}
	return auth.SignJWT(claims)
}

// Me returns the account for an authenticated username.
func (s *Service) Me(ctx context.Context, username string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(username) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByUsername(ctx, username)
}

// ForgotPassword issues a reset token for the account behind email.
// The opaque token is returned to the caller; only its hash is stored.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if s == nil || s.Repo == nil || s.Resets == nil {
		return "", errors.New("users service not configured")
	}
	user, err := s.Repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	ttl := s.ResetTTL
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	reset := PasswordReset{
		TokenHash: util.HashKey(token),
		Username:  user.Username,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.Resets.Create(ctx, reset); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s == nil || s.Repo == nil || s.Resets == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(token) == "" || newPassword == "" {
		return ErrResetTokenInvalid
	}

	tokenHash := util.HashKey(token)
	reset, err := s.Resets.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if time.Now().UTC().After(reset.ExpiresAt) {
		_ = s.Resets.Delete(ctx, tokenHash)
		return ErrResetTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Repo.UpdatePassword(ctx, reset.Username, string(hash)); err != nil {
		return err
	}
	return s.Resets.Delete(ctx, tokenHash)
}

// UpsertFromAuth persists the user identity from OAuth so external
// logins share the same account space as password logins.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(user.Username) == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("username and email are required")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return s.Repo.Upsert(ctx, user)
}
