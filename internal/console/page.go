package console

import (
	"html/template"
	"io"
	"strings"
	"sync"
)

// FileField is a file chosen in the collection form.
type FileField struct {
	Name   string
	Reader io.Reader
}

// CollectionForm mirrors the modal form. ID zero means "create".
type CollectionForm struct {
	ID              int64
	Title           string
	ReleaseYear     string
	ReleaseNumber   string
	Description     string
	PublicationLink string
	Cover           *FileField
	PDF             *FileField
}

// Page is the view model of one console screen: table rows, the alert line
// and the modal form. It is safe to read from another goroutine.
type Page struct {
	mu        sync.RWMutex
	rows      []template.HTML
	alert     string
	modalOpen bool
	form      CollectionForm
}

func (p *Page) Rows() []template.HTML {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]template.HTML(nil), p.rows...)
}

// TableHTML renders the rows inside a table body.
func (p *Page) TableHTML() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var b strings.Builder
	b.WriteString("<table><tbody>")
	for _, r := range p.rows {
		b.WriteString(string(r))
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func (p *Page) Alert() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.alert
}

func (p *Page) ModalOpen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modalOpen
}

func (p *Page) Form() CollectionForm {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.form
}

func (p *Page) clearRows() {
	p.mu.Lock()
	p.rows = nil
	p.mu.Unlock()
}

func (p *Page) appendRow(row template.HTML) {
	p.mu.Lock()
	p.rows = append(p.rows, row)
	p.mu.Unlock()
}

func (p *Page) setAlert(text string) {
	p.mu.Lock()
	p.alert = text
	p.mu.Unlock()
}

func (p *Page) openModal(form CollectionForm) {
	p.mu.Lock()
	p.form = form
	p.alert = ""
	p.modalOpen = true
	p.mu.Unlock()
}

func (p *Page) closeModal() {
	p.mu.Lock()
	p.modalOpen = false
	p.mu.Unlock()
}
