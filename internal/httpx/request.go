package httpx

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
)

// PathID parses a positive integer path value.
func PathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseForm parses a multipart or urlencoded body, whichever was sent.
func ParseForm(r *http.Request, maxMemory int64) error {
	err := r.ParseMultipartForm(maxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// OptionalFile returns the named file part, or nil when the field is absent
// or the client sent an empty file input.
func OptionalFile(r *http.Request, name string) (multipart.File, *multipart.FileHeader, error) {
	f, hdr, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if hdr.Filename == "" || hdr.Size == 0 {
		f.Close()
		return nil, nil, nil
	}
	return f, hdr, nil
}
