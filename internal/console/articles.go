package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ArticleRecord is the console's copy of a submission.
type ArticleRecord struct {
	ID        int64      `json:"id"`
	Author    string     `json:"author"`
	Title     string     `json:"title"`
	Email     string     `json:"email"`
	FilePath  string     `json:"file_path"`
	CreatedAt *time.Time `json:"created_at"`
}

// Articles is the submissions screen. It has no create or edit actions.
type Articles struct {
	client  *Client
	ep      Endpoints
	confirm Confirmer
	logger  *slog.Logger
	page    Page

	// Location is used to format created_at. Defaults to time.Local.
	Location *time.Location

	items []ArticleRecord
}

func NewArticles(client *Client, ep Endpoints, confirm Confirmer, logger *slog.Logger) *Articles {
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Articles{client: client, ep: ep, confirm: confirm, logger: logger, Location: time.Local}
}

// InitArticles builds the screen and performs the first load. A load failure
// is logged and leaves the table empty.
func InitArticles(ctx context.Context, client *Client, ep Endpoints, confirm Confirmer, logger *slog.Logger) *Articles {
	a := NewArticles(client, ep, confirm, logger)
	if err := a.Load(ctx); err != nil {
		a.logger.Error("load articles failed", "error", err)
	}
	return a
}

func (a *Articles) Page() *Page {
	return &a.page
}

func (a *Articles) Items() []ArticleRecord {
	a.page.mu.RLock()
	defer a.page.mu.RUnlock()
	return append([]ArticleRecord(nil), a.items...)
}

// DownloadURL returns the attachment link of a submission.
func (a *Articles) DownloadURL(id int64) string {
	return a.ep.DownloadFile(id)
}

func (a *Articles) Load(ctx context.Context) error {
	a.page.clearRows()

	raw, err := a.client.FetchJSON(ctx, http.MethodGet, a.ep.ListArticles(), nil, "")
	if err != nil {
		return err
	}
	items, err := decodeList[ArticleRecord](raw, "articles")
	if err != nil {
		return err
	}

	loc := a.Location
	if loc == nil {
		loc = time.Local
	}
	for _, it := range items {
		row, err := renderArticleRow(it, a.ep.DownloadFile(it.ID), loc)
		if err != nil {
			return fmt.Errorf("render article %d: %w", it.ID, err)
		}
		a.page.appendRow(row)
	}

	a.page.mu.Lock()
	a.items = items
	a.page.mu.Unlock()
	return nil
}

// Delete asks for confirmation, deletes the submission and reloads once.
func (a *Articles) Delete(ctx context.Context, id int64) error {
	if !a.confirm("Удалить заявку?") {
		return nil
	}

	_, delErr := a.client.FetchJSON(ctx, http.MethodDelete, a.ep.DeleteArticle(id), nil, "")
	if delErr != nil {
		a.page.setAlert(alertText(delErr, msgDeleteFailed))
	}
	loadErr := a.Load(ctx)
	return errors.Join(delErr, loadErr)
}
