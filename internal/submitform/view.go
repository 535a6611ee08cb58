// Package submitform is the article submission form: a single file slot
// filled by picking or dropping, a multipart upload with progress, and a
// result banner.
package submitform

import (
	"fmt"
	"io"
)

const (
	SubmitText        = "Отправить"
	SubmittingText    = "Отправка..."
	IndeterminateText = "Загрузка..."
)

// File is a manuscript chosen by the user. Size is -1 when unknown.
// A Reader that is also an io.Seeker is rewound before every submit, so a
// failed upload can be retried with the same file.
type File struct {
	Name   string
	Size   int64
	Reader io.Reader
}

func (f *File) replayable() bool {
	if f.Reader == nil {
		return true
	}
	_, ok := f.Reader.(io.Seeker)
	return ok
}

func (f *File) rewind() error {
	s, ok := f.Reader.(io.Seeker)
	if !ok {
		return nil
	}
	_, err := s.Seek(0, io.SeekStart)
	return err
}

// Fields are the text inputs of the form.
type Fields struct {
	Author string
	Title  string
	Email  string
}

type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
)

type Alert struct {
	Visible bool
	Kind    AlertKind
	Text    string
}

// View is a snapshot of everything the form displays.
type View struct {
	Fields           Fields
	FileLabel        string
	FileLabelVisible bool
	SubmitDisabled   bool
	SubmitText       string
	ProgressVisible  bool
	// Progress is the rounded percentage, or nil while indeterminate.
	Progress    *int
	PercentText string
	Alert       Alert
}

// FileLabel formats "Файл: <name> (<KB> КБ)" with the size rounded up.
func FileLabel(f *File) string {
	if f.Size < 0 {
		return fmt.Sprintf("Файл: %s", f.Name)
	}
	kb := (f.Size + 1023) / 1024
	return fmt.Sprintf("Файл: %s (%d КБ)", f.Name, kb)
}
