package collection

import (
	"context"
	"io"

	"bookcollect/internal/storage"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=collection

// Repository defines the contract for collection storage.
type Repository interface {
	List(ctx context.Context) ([]Collection, error)
	GetByID(ctx context.Context, id int64) (Collection, error)
	Create(ctx context.Context, c *Collection) error
	Update(ctx context.Context, c *Collection) error
	Delete(ctx context.Context, id int64) error
}

// FileStore keeps cover images and PDFs.
type FileStore interface {
	SaveAsset(kind storage.AssetKind, filename string, r io.Reader) (string, error)
	Remove(publicPath string) error
}
