package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
)

// CollectionRecord is the console's copy of a collection.
type CollectionRecord struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	ReleaseYear     *int    `json:"release_year"`
	ReleaseNumber   *int    `json:"release_number"`
	Description     *string `json:"description"`
	PublicationLink *string `json:"publication_link"`
	CoverImage      *string `json:"cover_image"`
	PDFPath         *string `json:"pdf_path"`
}

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer func(prompt string) bool

// AlwaysConfirm accepts every prompt.
func AlwaysConfirm(string) bool { return true }

const (
	msgSaveFailed   = "Ошибка сохранения"
	msgDeleteFailed = "Ошибка удаления"
	msgNetwork      = "Сетевая ошибка"
)

// Collections is the collections screen.
type Collections struct {
	client  *Client
	ep      Endpoints
	confirm Confirmer
	logger  *slog.Logger
	page    Page

	items []CollectionRecord
}

// NewCollections returns the screen without loading it. A nil Confirmer
// accepts every prompt.
func NewCollections(client *Client, ep Endpoints, confirm Confirmer, logger *slog.Logger) *Collections {
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collections{client: client, ep: ep, confirm: confirm, logger: logger}
}

// InitCollections builds the screen and performs the first load. A load
// failure is logged and leaves the table empty.
func InitCollections(ctx context.Context, client *Client, ep Endpoints, confirm Confirmer, logger *slog.Logger) *Collections {
	c := NewCollections(client, ep, confirm, logger)
	if err := c.Load(ctx); err != nil {
		c.logger.Error("load collections failed", "error", err)
	}
	return c
}

func (c *Collections) Page() *Page {
	return &c.page
}

// Items returns the records of the last successful load.
func (c *Collections) Items() []CollectionRecord {
	c.page.mu.RLock()
	defer c.page.mu.RUnlock()
	return append([]CollectionRecord(nil), c.items...)
}

// Load clears the table, fetches the list and renders one row per record.
func (c *Collections) Load(ctx context.Context) error {
	c.page.clearRows()

	items, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		row, err := renderCollectionRow(it)
		if err != nil {
			return fmt.Errorf("render collection %d: %w", it.ID, err)
		}
		c.page.appendRow(row)
	}

	c.page.mu.Lock()
	c.items = items
	c.page.mu.Unlock()
	return nil
}

func (c *Collections) fetch(ctx context.Context) ([]CollectionRecord, error) {
	raw, err := c.client.FetchJSON(ctx, http.MethodGet, c.ep.ListCollections(), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeList[CollectionRecord](raw, "collections")
}

// New opens an empty form.
func (c *Collections) New() {
	c.page.openModal(CollectionForm{})
}

// Edit re-fetches the list and opens the form prefilled with record id. An
// id missing from the fresh list leaves the modal closed.
func (c *Collections) Edit(ctx context.Context, id int64) error {
	items, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.ID == id {
			c.page.openModal(formFromRecord(it))
			return nil
		}
	}
	return nil
}

// Delete asks for confirmation, deletes the record and reloads the list
// exactly once, even when the delete failed.
func (c *Collections) Delete(ctx context.Context, id int64) error {
	if !c.confirm("Удалить сборник?") {
		return nil
	}

	_, delErr := c.client.FetchJSON(ctx, http.MethodDelete, c.ep.DeleteCollection(id), nil, "")
	if delErr != nil {
		c.page.setAlert(alertText(delErr, msgDeleteFailed))
	}
	loadErr := c.Load(ctx)
	return errors.Join(delErr, loadErr)
}

// Submit creates the record when form.ID is zero and updates it otherwise.
// Updates are sent as PUT with a multipart body.
func (c *Collections) Submit(ctx context.Context, form CollectionForm) error {
	c.page.setAlert("")

	body, contentType, err := encodeCollectionForm(form)
	if err != nil {
		c.page.setAlert(msgSaveFailed)
		return err
	}

	method, url := http.MethodPost, c.ep.CreateCollection()
	if form.ID != 0 {
		method, url = http.MethodPut, c.ep.UpdateCollection(form.ID)
	}

	if _, err := c.client.FetchJSON(ctx, method, url, body, contentType); err != nil {
		c.page.setAlert(alertText(err, msgSaveFailed))
		return err
	}

	c.page.closeModal()
	return c.Load(ctx)
}

func encodeCollectionForm(form CollectionForm) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"title", form.Title},
		{"release_year", form.ReleaseYear},
		{"release_number", form.ReleaseNumber},
		{"description", form.Description},
		{"publication_link", form.PublicationLink},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	files := []struct {
		name string
		file *FileField
	}{
		{"cover", form.Cover},
		{"pdf", form.PDF},
	}
	for _, f := range files {
		file := f.file
		if file == nil {
			continue
		}
		part, err := mw.CreateFormFile(f.name, file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, "", fmt.Errorf("read %s: %w", file.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func formFromRecord(r CollectionRecord) CollectionForm {
	f := CollectionForm{ID: r.ID, Title: r.Title}
	if r.ReleaseYear != nil {
		f.ReleaseYear = strconv.Itoa(*r.ReleaseYear)
	}
	if r.ReleaseNumber != nil {
		f.ReleaseNumber = strconv.Itoa(*r.ReleaseNumber)
	}
	if r.Description != nil {
		f.Description = *r.Description
	}
	if r.PublicationLink != nil {
		f.PublicationLink = *r.PublicationLink
	}
	return f
}

// alertText prefers the server's own error text and falls back to fallback
// for opaque replies and to a network message for transport failures.
func alertText(err error, fallback string) string {
	var he *HTTPError
	if errors.As(err, &he) {
		if he.ServerError != "" {
			return he.ServerError
		}
		return fallback
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fallback
	}
	return msgNetwork
}
