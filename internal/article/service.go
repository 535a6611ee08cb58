package article

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"bookcollect/internal/storage"
)

type Service struct {
	repo  Repository
	files FileStore
}

func NewService(repo Repository, files FileStore) *Service {
	return &Service{repo: repo, files: files}
}

// Submit validates a submission, stores the manuscript and records it. The
// stored file is removed when the record cannot be written.
func (s *Service) Submit(ctx context.Context, sub Submission, file *Upload) (Article, error) {
	sub = sub.normalized()
	if err := sub.Validate(); err != nil {
		return Article{}, err
	}
	if file == nil {
		return Article{}, ErrFileMissing
	}
	ext := storage.Ext(file.Filename)
	if !AllowedExts[ext] {
		return Article{}, fmt.Errorf("%w: %q", ErrFileType, file.Filename)
	}

	path, err := s.files.SaveArticle(sub.Title, ext, file.Reader)
	if err != nil {
		return Article{}, fmt.Errorf("save manuscript: %w", err)
	}

	a := Article{Author: sub.Author, Title: sub.Title, Email: sub.Email, FilePath: path}
	if err := s.repo.Create(ctx, &a); err != nil {
		if rmErr := s.files.Remove(path); rmErr != nil {
			slog.Warn("failed to remove orphaned manuscript", "path", path, "error", rmErr)
		}
		return Article{}, fmt.Errorf("insert article: %w", err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context) ([]Article, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Article, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes the record first, then its file.
func (s *Service) Delete(ctx context.Context, id int64) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.files.Remove(a.FilePath); err != nil {
		slog.Warn("failed to remove manuscript", "article_id", id, "path", a.FilePath, "error", err)
	}
	return nil
}

// OpenFile returns the submission together with its opened manuscript. The
// caller closes the file.
func (s *Service) OpenFile(ctx context.Context, id int64) (Article, *os.File, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Article{}, nil, err
	}
	f, err := s.files.Open(a.FilePath)
	if err != nil {
		return a, nil, fmt.Errorf("open manuscript: %w", err)
	}
	return a, f, nil
}
