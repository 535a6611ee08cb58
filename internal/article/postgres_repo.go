package article

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

func (r *PostgresRepo) List(ctx context.Context) ([]Article, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, author, title, email, file_path, created_at
		FROM articles
		ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Article, 0, 64)
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Author, &a.Title, &a.Email, &a.FilePath, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Article, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var a Article
	err := r.db.QueryRow(ctx, `
		SELECT id, author, title, email, file_path, created_at
		FROM articles WHERE id = $1`, id).
		Scan(&a.ID, &a.Author, &a.Title, &a.Email, &a.FilePath, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Article{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepo) Create(ctx context.Context, a *Article) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.QueryRow(ctx,
		`INSERT INTO articles (author, title, email, file_path) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		a.Author, a.Title, a.Email, a.FilePath,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
