package collection

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

const selectColumns = `SELECT id, title, release_year, release_number, description,
	publication_link, cover_image, pdf_path, created_at, updated_at
	FROM collections`

func scanCollection(row pgx.Row) (Collection, error) {
	var c Collection
	err := row.Scan(
		&c.ID, &c.Title, &c.ReleaseYear, &c.ReleaseNumber, &c.Description,
		&c.PublicationLink, &c.CoverImage, &c.PDFPath, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Collection, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, selectColumns+` ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Collection, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	c, err := scanCollection(r.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Collection{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepo) Create(ctx context.Context, c *Collection) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO collections (title, release_year, release_number, description, publication_link, cover_image, pdf_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		c.Title, c.ReleaseYear, c.ReleaseNumber, c.Description, c.PublicationLink, c.CoverImage, c.PDFPath,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *PostgresRepo) Update(ctx context.Context, c *Collection) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE collections SET
			title = $2,
			release_year = $3,
			release_number = $4,
			description = $5,
			publication_link = $6,
			cover_image = $7,
			pdf_path = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Title, c.ReleaseYear, c.ReleaseNumber, c.Description, c.PublicationLink, c.CoverImage, c.PDFPath,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
