// Package storage keeps uploaded manuscripts and collection assets on the
// local disk and maps them to public /uploads/ paths.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublicPrefix is the URL prefix under which the upload root is served.
const PublicPrefix = "/uploads/"

var (
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	ErrInvalidPath  = errors.New("path is outside the upload root")
)

// AssetKind names a collection asset directory.
type AssetKind string

const (
	KindArticle AssetKind = "articles"
	KindCover   AssetKind = "covers"
	KindPDF     AssetKind = "pdfs"
)

type FileStore struct {
	root     string
	maxBytes int64
	now      func() time.Time
}

func NewFileStore(root string, maxBytes int64) (*FileStore, error) {
	fs := &FileStore{root: root, maxBytes: maxBytes, now: time.Now}
	for _, kind := range []AssetKind{KindArticle, KindCover, KindPDF} {
		dir := filepath.Join(root, string(kind))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return fs, nil
}

func (fs *FileStore) Root() string {
	return fs.root
}

// SaveArticle stores a submitted manuscript as <slug>_<unix><ext> and returns
// its public path. A same-second clash gets a numeric suffix.
func (fs *FileStore) SaveArticle(title, ext string, r io.Reader) (string, error) {
	base := Slug(strings.TrimSuffix(title, filepath.Ext(title)))
	if base == "" {
		base = "article"
	}
	stamp := strconv.FormatInt(fs.now().Unix(), 10)

	for attempt := 1; attempt <= 100; attempt++ {
		name := base + "_" + stamp
		if attempt > 1 {
			name += "_" + strconv.Itoa(attempt)
		}
		p, err := fs.create(KindArticle, name+ext, r)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		return p, err
	}
	return "", fmt.Errorf("no free file name for %q", base)
}

// SaveAsset stores a collection cover or PDF under a uuid-prefixed name.
func (fs *FileStore) SaveAsset(kind AssetKind, filename string, r io.Reader) (string, error) {
	ext := Ext(filename)
	base := Slug(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	name := uuid.NewString()
	if base != "" {
		name += "_" + base
	}
	return fs.create(kind, name+ext, r)
}

func (fs *FileStore) create(kind AssetKind, name string, r io.Reader) (string, error) {
	full := filepath.Join(fs.root, string(kind), name)
	out, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	if err := fs.writeWithLimit(out, r); err != nil {
		out.Close()
		os.Remove(full)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return path.Join(PublicPrefix, string(kind), name), nil
}

func (fs *FileStore) writeWithLimit(out io.Writer, r io.Reader) error {
	if fs.maxBytes <= 0 {
		_, err := io.Copy(out, r)
		return err
	}
	n, err := io.Copy(out, io.LimitReader(r, fs.maxBytes+1))
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if n > fs.maxBytes {
		return ErrFileTooLarge
	}
	return nil
}

// Open opens a stored file by its public path.
func (fs *FileStore) Open(publicPath string) (*os.File, error) {
	full, err := fs.resolve(publicPath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Remove deletes a stored file. A missing file is not an error.
func (fs *FileStore) Remove(publicPath string) error {
	if publicPath == "" {
		return nil
	}
	full, err := fs.resolve(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (fs *FileStore) resolve(publicPath string) (string, error) {
	clean := path.Clean("/" + strings.TrimPrefix(publicPath, "/"))
	if !strings.HasPrefix(clean, PublicPrefix) {
		return "", ErrInvalidPath
	}
	rel := strings.TrimPrefix(clean, PublicPrefix)
	if rel == "" {
		return "", ErrInvalidPath
	}
	return filepath.Join(fs.root, filepath.FromSlash(rel)), nil
}
