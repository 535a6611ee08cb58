// Package article handles manuscript submissions from authors and their
// review by administrators.
package article

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound      = errors.New("article not found")
	ErrMissingFields = errors.New("author, title and email are required")
	ErrInvalidEmail  = errors.New("invalid email")
	ErrFieldTooLong  = errors.New("field value too long")
	ErrFileMissing   = errors.New("manuscript file is required")
	ErrFileType      = errors.New("unsupported manuscript type")
)

// AllowedExts lists the accepted manuscript formats.
var AllowedExts = map[string]bool{".pdf": true, ".docx": true, ".odt": true}

var validate = validator.New()

// Article is a stored submission.
type Article struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Email     string    `json:"email"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}

// Submission is what an author sends with the public form.
type Submission struct {
	Author string `validate:"required,max=300"`
	Title  string `validate:"required,max=500"`
	Email  string `validate:"required,email,max=320"`
}

// Upload is the attached manuscript.
type Upload struct {
	Filename string
	Reader   io.Reader
}

func (s Submission) normalized() Submission {
	return Submission{
		Author: strings.TrimSpace(s.Author),
		Title:  strings.TrimSpace(s.Title),
		Email:  strings.TrimSpace(s.Email),
	}
}

// Validate reports the first problem in the order the form shows it.
func (s Submission) Validate() error {
	if s.Author == "" || s.Title == "" || s.Email == "" {
		return ErrMissingFields
	}
	if err := validate.Var(s.Email, "email"); err != nil {
		return ErrInvalidEmail
	}
	if err := validate.Struct(s); err != nil {
		return ErrFieldTooLong
	}
	return nil
}
