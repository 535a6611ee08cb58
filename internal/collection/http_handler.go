package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"bookcollect/internal/httpx"
	"bookcollect/internal/storage"
)

const maxFormMemory = 32 << 20

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// List handles GET /api/collections
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list collections", err)
		return
	}
	httpx.JSONSuccess(w, nonNil(items))
}

// AdminList handles GET /admin/collections
func (h *HTTPHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list collections", err)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"collections": nonNil(items)})
}

// Get handles GET /api/collections/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Некорректный ID", nil)
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Сборник не найден", nil)
			return
		}
		h.internalError(w, r, "get collection", err)
		return
	}
	httpx.JSONSuccess(w, c)
}

// Create handles POST /admin/collection
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, cover, pdf, ok := h.readInput(w, r)
	if !ok {
		return
	}
	defer closeUploads(cover, pdf)

	c, err := h.service.Create(r.Context(), in, cover.upload(), pdf.upload())
	if err != nil {
		h.writeMutationError(w, r, 0, err)
		return
	}

	slog.Info("collection created", "admin_id", httpx.AdminIDFrom(r), "collection_id", c.ID)
	httpx.JSONSuccessCreated(w, map[string]any{
		"id":      c.ID,
		"message": "Сборник создан",
	})
}

// Update handles PUT /admin/collection/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Некорректный ID", nil)
		return
	}

	in, cover, pdf, ok := h.readInput(w, r)
	if !ok {
		return
	}
	defer closeUploads(cover, pdf)

	c, err := h.service.Update(r.Context(), id, in, cover.upload(), pdf.upload())
	if err != nil {
		h.writeMutationError(w, r, id, err)
		return
	}

	slog.Info("collection updated", "admin_id", httpx.AdminIDFrom(r), "collection_id", id)
	httpx.JSONSuccess(w, map[string]any{
		"id":      c.ID,
		"message": fmt.Sprintf("Сборник с ID %d обновлён", id),
	})
}

// Delete handles DELETE /admin/collection/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Некорректный ID", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeMutationError(w, r, id, err)
		return
	}

	slog.Info("collection deleted", "admin_id", httpx.AdminIDFrom(r), "collection_id", id)
	httpx.JSONSuccess(w, map[string]any{
		"message": fmt.Sprintf("Сборник с ID %d удалён", id),
	})
}

func (h *HTTPHandler) writeMutationError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Сборник с ID %d не найден", id), nil)
	case errors.Is(err, ErrValidation):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Поле 'title' обязательно", nil)
	case errors.Is(err, ErrFileType):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_FILE_TYPE", "Недопустимый тип файла: обложка JPG/PNG/WEBP/GIF, выпуск PDF", nil)
	case errors.Is(err, storage.ErrFileTooLarge):
		httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Слишком большой файл", nil)
	default:
		h.internalError(w, r, "save collection", err)
	}
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op+" failed", "request_id", httpx.RequestIDFrom(r), "error", err)
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Внутренняя ошибка сервера", nil)
}

// readInput decodes a JSON body or a multipart/urlencoded form. Only forms
// may carry files.
func (h *HTTPHandler) readInput(w http.ResponseWriter, r *http.Request) (Input, *formFile, *formFile, bool) {
	var in Input
	var details []httpx.ErrorDetail
	var cover, pdf *formFile

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Неверный JSON", nil)
			return Input{}, nil, nil, false
		}
	} else {
		if err := httpx.ParseForm(r, maxFormMemory); err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_FORM", "Ошибка парсинга формы", nil)
			return Input{}, nil, nil, false
		}
		in.Title = r.FormValue("title")
		in.Description = optionalString(r.FormValue("description"))
		in.PublicationLink = optionalString(r.FormValue("publication_link"))
		in.ReleaseYear, details = optionalInt(r.FormValue("release_year"), "release_year", details)
		in.ReleaseNumber, details = optionalInt(r.FormValue("release_number"), "release_number", details)

		var err error
		if cover, err = openFormFile(r, "cover"); err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_FORM", "Ошибка чтения файла обложки", nil)
			return Input{}, nil, nil, false
		}
		if pdf, err = openFormFile(r, "pdf"); err != nil {
			closeUploads(cover)
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_FORM", "Ошибка чтения PDF", nil)
			return Input{}, nil, nil, false
		}
	}

	in.Title = strings.TrimSpace(in.Title)
	details = append(details, httpx.ValidateStruct(in)...)
	if len(details) > 0 {
		closeUploads(cover, pdf)
		msg := "Некорректные данные сборника"
		if in.Title == "" {
			msg = "Поле 'title' обязательно"
		}
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", msg, details)
		return Input{}, nil, nil, false
	}
	return in, cover, pdf, true
}

type formFile struct {
	name string
	file multipart.File
}

func openFormFile(r *http.Request, field string) (*formFile, error) {
	f, hdr, err := httpx.OptionalFile(r, field)
	if err != nil || f == nil {
		return nil, err
	}
	return &formFile{name: hdr.Filename, file: f}, nil
}

func (f *formFile) upload() *Upload {
	if f == nil {
		return nil
	}
	return &Upload{Filename: f.name, Reader: f.file}
}

func closeUploads(files ...*formFile) {
	for _, f := range files {
		if f != nil {
			f.file.Close()
		}
	}
}

func optionalString(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func optionalInt(v, field string, details []httpx.ErrorDetail) (*int, []httpx.ErrorDetail) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, details
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, append(details, httpx.ErrorDetail{Field: field, Message: field + " must be a number"})
	}
	return &n, details
}

func nonNil(items []Collection) []Collection {
	if items == nil {
		return []Collection{}
	}
	return items
}
