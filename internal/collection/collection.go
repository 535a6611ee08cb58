// Package collection manages published collections: issues with an optional
// cover image and full-text PDF.
package collection

import (
	"errors"
	"io"
	"time"
)

var (
	ErrNotFound   = errors.New("collection not found")
	ErrValidation = errors.New("invalid collection")
	ErrFileType   = errors.New("unsupported file type")
)

// Collection is a published issue. Optional columns are nil when unset.
type Collection struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	ReleaseYear     *int      `json:"release_year,omitempty"`
	ReleaseNumber   *int      `json:"release_number,omitempty"`
	Description     *string   `json:"description,omitempty"`
	PublicationLink *string   `json:"publication_link,omitempty"`
	CoverImage      *string   `json:"cover_image,omitempty"`
	PDFPath         *string   `json:"pdf_path,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Input carries the editable text fields of a collection.
type Input struct {
	Title           string  `json:"title" validate:"required,max=500"`
	ReleaseYear     *int    `json:"release_year" validate:"omitempty,min=1,max=9999"`
	ReleaseNumber   *int    `json:"release_number" validate:"omitempty,min=1"`
	Description     *string `json:"description"`
	PublicationLink *string `json:"publication_link" validate:"omitempty,url"`
}

// Upload is an attached file as received from the client.
type Upload struct {
	Filename string
	Reader   io.Reader
}

func (in Input) apply(c *Collection) {
	c.Title = in.Title
	c.ReleaseYear = in.ReleaseYear
	c.ReleaseNumber = in.ReleaseNumber
	c.Description = in.Description
	c.PublicationLink = in.PublicationLink
}
