package article

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"bookcollect/internal/httpx"
	"bookcollect/internal/storage"
)

// formOverhead is the allowance for text fields and multipart framing on top
// of the manuscript size limit.
const formOverhead = 1 << 20

type HTTPHandler struct {
	service  *Service
	maxBytes int64
}

func NewHTTPHandler(service *Service, maxUploadBytes int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBytes: maxUploadBytes}
}

func (h *HTTPHandler) tooLargeMessage() string {
	return fmt.Sprintf("Слишком большой файл (лимит %d МБ)", h.maxBytes>>20)
}

// Submit handles POST /article
func (h *HTTPHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+formOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", h.tooLargeMessage(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_FORM", "Ошибка чтения формы", nil)
		return
	}

	sub := Submission{
		Author: r.FormValue("author"),
		Title:  r.FormValue("title"),
		Email:  r.FormValue("email"),
	}

	var upload *Upload
	file, hdr, err := httpx.OptionalFile(r, "file")
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_FORM", "Ошибка чтения файла", nil)
		return
	}
	if file != nil {
		defer file.Close()
		if hdr.Size > h.maxBytes {
			httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", h.tooLargeMessage(), nil)
			return
		}
		upload = &Upload{Filename: hdr.Filename, Reader: file}
	}

	a, err := h.service.Submit(r.Context(), sub, upload)
	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}

	slog.Info("article submitted", "article_id", a.ID, "request_id", httpx.RequestIDFrom(r))
	httpx.JSONSuccess(w, map[string]any{
		"ok":  true,
		"id":  a.ID,
		"msg": "Заявка отправлена",
	})
}

func (h *HTTPHandler) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Заполните все поля: Автор, Название, Email", nil)
	case errors.Is(err, ErrInvalidEmail):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Некорректный email",
			[]httpx.ErrorDetail{{Field: "email", Message: "email must be a valid email address"}})
	case errors.Is(err, ErrFieldTooLong):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Слишком длинное значение поля", nil)
	case errors.Is(err, ErrFileMissing):
		httpx.JSONError(w, r, http.StatusBadRequest, "FILE_REQUIRED", "Приложите файл рукописи", nil)
	case errors.Is(err, ErrFileType):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_FILE_TYPE", "Недопустимый тип файла. Разрешено: PDF, DOCX, ODT", nil)
	case errors.Is(err, storage.ErrFileTooLarge):
		httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", h.tooLargeMessage(), nil)
	default:
		slog.Error("article submit failed", "request_id", httpx.RequestIDFrom(r), "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Ошибка БД при сохранении заявки", nil)
	}
}

// List handles GET /admin/articles
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("list articles failed", "request_id", httpx.RequestIDFrom(r), "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Ошибка запроса", nil)
		return
	}
	if items == nil {
		items = []Article{}
	}
	httpx.JSONSuccess(w, items)
}

// Get handles GET /admin/articles/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Некорректный ID", nil)
		return
	}

	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, a)
}

// Delete handles DELETE /admin/articles/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Некорректный ID", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeLookupError(w, r, err)
		return
	}

	slog.Info("article deleted", "admin_id", httpx.AdminIDFrom(r), "article_id", id)
	httpx.JSONSuccess(w, map[string]any{"message": "Статья и файл удалены"})
}

// Download handles GET /admin/articles/{id}/download
func (h *HTTPHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Некорректный ID", nil)
		return
	}

	a, f, err := h.service.OpenFile(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeLookupError(w, r, err)
			return
		}
		slog.Error("open manuscript failed", "article_id", id, "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "FILE_UNAVAILABLE", "Файл недоступен", nil)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "FILE_UNAVAILABLE", "Файл недоступен", nil)
		return
	}

	name := path.Base(a.FilePath)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (h *HTTPHandler) writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Статья не найдена", nil)
		return
	}
	slog.Error("article lookup failed", "request_id", httpx.RequestIDFrom(r), "error", err)
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Ошибка запроса", nil)
}
