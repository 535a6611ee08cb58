package admin

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) GetByLogin(ctx context.Context, login string) (Administrator, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var a Administrator
	err := r.db.QueryRow(ctx,
		`SELECT id, login, password_hash, created_at FROM administrators WHERE login = $1`, login,
	).Scan(&a.ID, &a.Login, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Administrator{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepo) Upsert(ctx context.Context, login, passwordHash string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO administrators (login, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = NOW()
		RETURNING id`, login, passwordHash,
	).Scan(&id)
	return id, err
}

func (r *PostgresRepo) Revoke(ctx context.Context, jti string, adminID int64, expiresAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO token_blacklist (jti, admin_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (jti) DO NOTHING`, jti, adminID, expiresAt)
	return err
}

func (r *PostgresRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE jti = $1)`, jti).Scan(&exists)
	return exists, err
}

func (r *PostgresRepo) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM token_blacklist WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
