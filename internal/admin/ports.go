package admin

import (
	"context"
	"time"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=admin

// Repository defines the contract for administrator and revoked-token storage.
type Repository interface {
	GetByLogin(ctx context.Context, login string) (Administrator, error)
	Upsert(ctx context.Context, login, passwordHash string) (int64, error)
	Revoke(ctx context.Context, jti string, adminID int64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}
