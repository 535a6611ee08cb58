package collection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bookcollect/internal/storage"
)

var coverExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// Service provides collection business logic.
type Service struct {
	repo  Repository
	files FileStore
}

func NewService(repo Repository, files FileStore) *Service {
	return &Service{repo: repo, files: files}
}

func (s *Service) List(ctx context.Context) ([]Collection, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Collection, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores the attached files and inserts the collection. Files are
// removed again if the insert fails.
func (s *Service) Create(ctx context.Context, in Input, cover, pdf *Upload) (Collection, error) {
	in = normalize(in)
	if in.Title == "" {
		return Collection{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	var c Collection
	in.apply(&c)

	saved, err := s.saveFiles(&c, cover, pdf)
	if err != nil {
		return Collection{}, err
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		s.removeFiles(saved...)
		return Collection{}, err
	}
	return c, nil
}

// Update overwrites the text fields of an existing collection. A nil upload
// keeps the stored file; a new one replaces it and the old file is removed.
func (s *Service) Update(ctx context.Context, id int64, in Input, cover, pdf *Upload) (Collection, error) {
	in = normalize(in)
	if in.Title == "" {
		return Collection{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Collection{}, err
	}
	oldCover, oldPDF := c.CoverImage, c.PDFPath
	in.apply(&c)

	saved, err := s.saveFiles(&c, cover, pdf)
	if err != nil {
		return Collection{}, err
	}
	if err := s.repo.Update(ctx, &c); err != nil {
		s.removeFiles(saved...)
		return Collection{}, err
	}

	if cover != nil && oldCover != nil {
		s.removeFiles(*oldCover)
	}
	if pdf != nil && oldPDF != nil {
		s.removeFiles(*oldPDF)
	}
	return c, nil
}

// Delete removes the collection row and then, best-effort, its files.
func (s *Service) Delete(ctx context.Context, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	var paths []string
	if c.CoverImage != nil {
		paths = append(paths, *c.CoverImage)
	}
	if c.PDFPath != nil {
		paths = append(paths, *c.PDFPath)
	}
	s.removeFiles(paths...)
	return nil
}

func (s *Service) saveFiles(c *Collection, cover, pdf *Upload) ([]string, error) {
	if cover != nil && !coverExts[storage.Ext(cover.Filename)] {
		return nil, fmt.Errorf("%w: cover %q", ErrFileType, cover.Filename)
	}
	if pdf != nil && storage.Ext(pdf.Filename) != ".pdf" {
		return nil, fmt.Errorf("%w: pdf %q", ErrFileType, pdf.Filename)
	}

	var saved []string
	if cover != nil {
		p, err := s.files.SaveAsset(storage.KindCover, cover.Filename, cover.Reader)
		if err != nil {
			return nil, fmt.Errorf("save cover: %w", err)
		}
		saved = append(saved, p)
		c.CoverImage = &p
	}
	if pdf != nil {
		p, err := s.files.SaveAsset(storage.KindPDF, pdf.Filename, pdf.Reader)
		if err != nil {
			s.removeFiles(saved...)
			return nil, fmt.Errorf("save pdf: %w", err)
		}
		saved = append(saved, p)
		c.PDFPath = &p
	}
	return saved, nil
}

func (s *Service) removeFiles(paths ...string) {
	for _, p := range paths {
		if err := s.files.Remove(p); err != nil {
			slog.Warn("failed to remove collection file", "path", p, "error", err)
		}
	}
}

func normalize(in Input) Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = trimmedOrNil(in.Description)
	in.PublicationLink = trimmedOrNil(in.PublicationLink)
	return in
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
