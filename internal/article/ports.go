package article

import (
	"context"
	"io"
	"os"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=article

// Repository defines the contract for submission storage.
type Repository interface {
	List(ctx context.Context) ([]Article, error)
	GetByID(ctx context.Context, id int64) (Article, error)
	Create(ctx context.Context, a *Article) error
	Delete(ctx context.Context, id int64) error
}

// FileStore keeps the manuscript files.
type FileStore interface {
	SaveArticle(title, ext string, r io.Reader) (string, error)
	Open(publicPath string) (*os.File, error)
	Remove(publicPath string) error
}
