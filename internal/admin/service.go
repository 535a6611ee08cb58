package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookcollect/internal/platform/crypto"
)

type Service struct {
	secret string
	ttl    time.Duration
	repo   Repository
}

func NewService(secret string, ttl time.Duration, repo Repository) *Service {
	return &Service{secret: secret, ttl: ttl, repo: repo}
}

// Login checks the credentials and issues a session token. Unknown logins
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, login, password string) (Session, error) {
	a, err := s.repo.GetByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, ErrNotFound) {
		return Session{}, ErrUnauthorized
	}
	if err != nil {
		return Session{}, err
	}
	if !crypto.VerifyPassword(a.PasswordHash, password) {
		return Session{}, ErrUnauthorized
	}

	token, jti, err := crypto.GenerateToken(s.secret, a.ID, a.Login, s.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{
		Token:     token,
		TokenID:   jti,
		AdminID:   a.ID,
		ExpiresAt: time.Now().Add(s.ttl),
	}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return ErrUnauthorized
	}
	adminID, err := claims.AdminID()
	if err != nil {
		return ErrUnauthorized
	}

	expiresAt := time.Now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.repo.Revoke(ctx, claims.ID, adminID, expiresAt)
}

// IsRevoked satisfies httpx.RevocationChecker.
func (s *Service) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return true, nil
	}
	return s.repo.IsRevoked(ctx, jti)
}

// EnsureAdmin creates the administrator or resets its password.
func (s *Service) EnsureAdmin(ctx context.Context, login, password string) (int64, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return 0, errors.New("login is required")
	}
	if err := crypto.ValidatePasswordStrength(password); err != nil {
		return 0, err
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Upsert(ctx, login, hash)
}

// PurgeExpired drops revocations whose tokens have expired.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpired(ctx)
}
