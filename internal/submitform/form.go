package submitform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
)

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeAppError
	OutcomeNetworkError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeAppError:
		return "app_error"
	default:
		return "network_error"
	}
}

// Outcome is the result of one submission.
type Outcome struct {
	Kind    OutcomeKind
	Status  int
	ID      int64
	Message string
	Err     error
}

// Form holds the state of one submission form. Methods are safe for
// concurrent use; observers are called outside the lock.
type Form struct {
	action string
	client *http.Client

	mu        sync.Mutex
	view      View
	file      *File
	observers []func(View)
}

// New returns a form that posts to action.
func New(action string, client *http.Client) *Form {
	if client == nil {
		client = http.DefaultClient
	}
	return &Form{
		action: action,
		client: client,
		view:   View{SubmitText: SubmitText},
	}
}

// OnChange registers fn to receive a snapshot after every state change.
func (f *Form) OnChange(fn func(View)) {
	f.mu.Lock()
	f.observers = append(f.observers, fn)
	f.mu.Unlock()
}

func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

func (f *Form) snapshot() View {
	v := f.view
	if v.Progress != nil {
		p := *v.Progress
		v.Progress = &p
	}
	return v
}

func (f *Form) update(fn func(v *View)) {
	f.mu.Lock()
	fn(&f.view)
	snap := f.snapshot()
	observers := append([]func(View){}, f.observers...)
	f.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
}

func (f *Form) SetFields(fields Fields) {
	f.update(func(v *View) { v.Fields = fields })
}

// PickFile fills the file slot. A nil file is ignored.
func (f *Form) PickFile(file *File) {
	if file == nil {
		return
	}
	f.update(func(v *View) {
		f.file = file
		v.FileLabel = FileLabel(file)
		v.FileLabelVisible = true
	})
}

// DropFiles behaves like picking the first dropped file. An empty drop is a
// no-op.
func (f *Form) DropFiles(files []*File) {
	if len(files) == 0 {
		return
	}
	f.PickFile(files[0])
}

// Submit uploads the form and blocks until the server answers. Exactly one
// outcome is produced; there is no retry.
func (f *Form) Submit(ctx context.Context) Outcome {
	f.mu.Lock()
	fields := f.view.Fields
	file := f.file
	f.mu.Unlock()

	f.update(func(v *View) {
		v.Alert = Alert{}
		v.SubmitDisabled = true
		v.SubmitText = SubmittingText
		v.ProgressVisible = true
		zero := 0
		v.Progress = &zero
		v.PercentText = "0%"
	})

	out := f.send(ctx, fields, file)

	f.update(func(v *View) {
		v.SubmitDisabled = false
		v.SubmitText = SubmitText
		v.ProgressVisible = false

		switch out.Kind {
		case OutcomeSuccess:
			v.Alert = Alert{Visible: true, Kind: AlertSuccess, Text: out.Message}
			v.Fields = Fields{}
			v.FileLabel = ""
			v.FileLabelVisible = false
			zero := 0
			v.Progress = &zero
			v.PercentText = ""
			f.file = nil
		default:
			v.Alert = Alert{Visible: true, Kind: AlertError, Text: out.Message}
			// A consumed stream cannot be sent again; the file must be picked anew.
			if file != nil && !file.replayable() && f.file == file {
				f.file = nil
				v.FileLabel = ""
				v.FileLabelVisible = false
			}
		}
	})
	return out
}

type submitResponse struct {
	OK    bool   `json:"ok"`
	ID    int64  `json:"id"`
	Msg   string `json:"msg"`
	Error string `json:"error"`
}

func (f *Form) send(ctx context.Context, fields Fields, file *File) Outcome {
	if file != nil {
		if err := file.rewind(); err != nil {
			return Outcome{Kind: OutcomeNetworkError, Message: "Сетевая ошибка.", Err: fmt.Errorf("rewind %s: %w", file.Name, err)}
		}
	}
	body, contentType, length, err := f.encode(fields, file)
	if err != nil {
		return Outcome{Kind: OutcomeNetworkError, Message: "Сетевая ошибка.", Err: err}
	}
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.action, body)
	if err != nil {
		return Outcome{Kind: OutcomeNetworkError, Message: "Сетевая ошибка.", Err: err}
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Outcome{Kind: OutcomeNetworkError, Message: "Сетевая ошибка.", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Kind: OutcomeNetworkError, Status: resp.StatusCode, Message: "Сетевая ошибка.", Err: err}
	}
	var parsed submitResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		msg := "Заявка отправлена."
		if parsed.ID != 0 {
			msg += fmt.Sprintf(" ID заявки: %d.", parsed.ID)
		}
		return Outcome{Kind: OutcomeSuccess, Status: resp.StatusCode, ID: parsed.ID, Message: msg}
	}

	msg := strings.TrimSpace(parsed.Error)
	if msg == "" {
		msg = "Ошибка отправки."
	}
	return Outcome{
		Kind:    OutcomeAppError,
		Status:  resp.StatusCode,
		Message: msg,
		Err:     fmt.Errorf("submit: status %d: %s", resp.StatusCode, msg),
	}
}

// encode builds the multipart body. A file of known size is buffered so the
// request length, and with it the percentage, is known; otherwise the body
// is streamed and progress is indeterminate.
func (f *Form) encode(fields Fields, file *File) (io.ReadCloser, string, int64, error) {
	if file == nil || file.Size >= 0 {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if err := writeParts(mw, fields, file); err != nil {
			return nil, "", 0, err
		}
		total := int64(buf.Len())
		return io.NopCloser(f.progressReader(&buf, total)), mw.FormDataContentType(), total, nil
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeParts(mw, fields, file))
	}()
	return &pipeBody{Reader: f.progressReader(pr, -1), pr: pr}, mw.FormDataContentType(), -1, nil
}

type pipeBody struct {
	io.Reader
	pr *io.PipeReader
}

func (b *pipeBody) Close() error {
	return b.pr.Close()
}

func writeParts(mw *multipart.Writer, fields Fields, file *File) error {
	for _, kv := range [][2]string{
		{"author", fields.Author},
		{"title", fields.Title},
		{"email", fields.Email},
	} {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}
	if file != nil {
		part, err := mw.CreateFormFile("file", file.Name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return fmt.Errorf("read %s: %w", file.Name, err)
		}
	}
	return mw.Close()
}

func (f *Form) progressReader(r io.Reader, total int64) io.Reader {
	return &countingReader{r: r, total: total, report: f.reportProgress}
}

func (f *Form) reportProgress(loaded, total int64) {
	f.update(func(v *View) {
		if total <= 0 {
			v.Progress = nil
			v.PercentText = IndeterminateText
			return
		}
		p := int(math.Round(float64(loaded) / float64(total) * 100))
		v.Progress = &p
		v.PercentText = fmt.Sprintf("%d%%", p)
	})
}

type countingReader struct {
	r      io.Reader
	loaded int64
	total  int64
	report func(loaded, total int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.loaded += int64(n)
		c.report(c.loaded, c.total)
	}
	return n, err
}
