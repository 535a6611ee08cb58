package submitform

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdf(size int) *File {
	return &File{Name: "paper.pdf", Size: int64(size), Reader: strings.NewReader(strings.Repeat("x", size))}
}

func TestPickFile_Label(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "Файл: a.pdf (0 КБ)"},
		{1, "Файл: a.pdf (1 КБ)"},
		{1024, "Файл: a.pdf (1 КБ)"},
		{1025, "Файл: a.pdf (2 КБ)"},
		{-1, "Файл: a.pdf"},
	}
	for _, tt := range tests {
		f := New("http://example.invalid/article", nil)
		f.PickFile(&File{Name: "a.pdf", Size: tt.size})
		v := f.View()
		assert.True(t, v.FileLabelVisible)
		assert.Equal(t, tt.want, v.FileLabel)
	}
}

func TestPickFile_Replaces(t *testing.T) {
	f := New("http://example.invalid/article", nil)
	f.PickFile(&File{Name: "one.pdf", Size: 10})
	f.PickFile(&File{Name: "two.odt", Size: 3000})
	assert.Equal(t, "Файл: two.odt (3 КБ)", f.View().FileLabel)

	f.PickFile(nil)
	assert.Equal(t, "Файл: two.odt (3 КБ)", f.View().FileLabel, "nil pick is ignored")
}

func TestDropFiles_SameAsPick(t *testing.T) {
	picked := New("http://example.invalid/article", nil)
	dropped := New("http://example.invalid/article", nil)

	file := &File{Name: "draft.docx", Size: 5000}
	picked.PickFile(file)
	dropped.DropFiles([]*File{file, {Name: "ignored.pdf", Size: 1}})
	assert.Equal(t, picked.View(), dropped.View())

	before := dropped.View()
	dropped.DropFiles(nil)
	assert.Equal(t, before, dropped.View(), "empty drop is a no-op")
}

func TestSubmit_Success(t *testing.T) {
	var current atomic.Pointer[Form]
	var inFlightMu sync.Mutex
	var inFlight View
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		inFlightMu.Lock()
		inFlight = current.Load().View()
		inFlightMu.Unlock()
		assert.Equal(t, "Иванов", r.FormValue("author"))
		assert.Equal(t, "О книгах", r.FormValue("title"))
		assert.Equal(t, "i@example.com", r.FormValue("email"))
		_, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			assert.Equal(t, "paper.pdf", hdr.Filename)
			assert.Equal(t, int64(4096), hdr.Size)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"id":42,"msg":"Заявка отправлена"}`)
	}))
	defer srv.Close()

	form := New(srv.URL, srv.Client())
	current.Store(form)
	form.SetFields(Fields{Author: "Иванов", Title: "О книгах", Email: "i@example.com"})
	form.PickFile(pdf(4096))

	var mu sync.Mutex
	var percents []int
	form.OnChange(func(v View) {
		if v.ProgressVisible && v.Progress != nil {
			mu.Lock()
			percents = append(percents, *v.Progress)
			mu.Unlock()
		}
	})

	out := form.Submit(context.Background())
	require.Equal(t, OutcomeSuccess, out.Kind, out.Message)
	assert.Equal(t, int64(42), out.ID)

	inFlightMu.Lock()
	defer inFlightMu.Unlock()
	assert.True(t, inFlight.SubmitDisabled)
	assert.Equal(t, SubmittingText, inFlight.SubmitText)
	assert.True(t, inFlight.ProgressVisible)
	require.NotNil(t, inFlight.Progress)
	assert.Equal(t, 100, *inFlight.Progress, "body is fully read by the server")

	v := form.View()
	assert.Equal(t, Alert{Visible: true, Kind: AlertSuccess, Text: "Заявка отправлена. ID заявки: 42."}, v.Alert)
	assert.Equal(t, Fields{}, v.Fields)
	assert.False(t, v.FileLabelVisible)
	assert.False(t, v.ProgressVisible)
	assert.False(t, v.SubmitDisabled)
	assert.Equal(t, SubmitText, v.SubmitText)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, percents)
	assert.Equal(t, 0, percents[0])
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
}

func TestSubmit_SuccessWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	form := New(srv.URL, srv.Client())
	form.PickFile(pdf(10))
	out := form.Submit(context.Background())

	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, "Заявка отправлена.", form.View().Alert.Text)
}

func TestSubmit_AppError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"server message", http.StatusBadRequest, `{"error":"Некорректный email"}`, "Некорректный email"},
		{"opaque", http.StatusBadGateway, `<html>bad gateway</html>`, "Ошибка отправки."},
		{"json without error", http.StatusInternalServerError, `{}`, "Ошибка отправки."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			form := New(srv.URL, srv.Client())
			fields := Fields{Author: "A", Title: "T", Email: "bad"}
			form.SetFields(fields)
			form.PickFile(pdf(2048))

			out := form.Submit(context.Background())
			assert.Equal(t, OutcomeAppError, out.Kind)
			assert.Equal(t, tt.status, out.Status)

			v := form.View()
			assert.Equal(t, Alert{Visible: true, Kind: AlertError, Text: tt.message}, v.Alert)
			assert.Equal(t, fields, v.Fields, "form is not reset")
			assert.True(t, v.FileLabelVisible)
			assert.False(t, v.SubmitDisabled)
			assert.Equal(t, SubmitText, v.SubmitText)
			assert.False(t, v.ProgressVisible)
		})
	}
}

func TestSubmit_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	form := New(url, nil)
	form.PickFile(pdf(10))
	out := form.Submit(context.Background())

	assert.Equal(t, OutcomeNetworkError, out.Kind)
	assert.Error(t, out.Err)
	v := form.View()
	assert.Equal(t, "Сетевая ошибка.", v.Alert.Text)
	assert.Equal(t, AlertError, v.Alert.Kind)
	assert.False(t, v.SubmitDisabled)
	assert.False(t, v.ProgressVisible)
}

func TestSubmit_UnknownSizeIsIndeterminate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, int64(-1), r.ContentLength)
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			_, hdr, err := r.FormFile("file")
			if assert.NoError(t, err) {
				assert.Equal(t, "stream.pdf", hdr.Filename)
			}
		}
		_, _ = io.WriteString(w, `{"ok":true,"id":7}`)
	}))
	defer srv.Close()

	form := New(srv.URL, srv.Client())
	form.PickFile(&File{Name: "stream.pdf", Size: -1, Reader: strings.NewReader("%PDF stream")})

	var mu sync.Mutex
	var sawIndeterminate bool
	form.OnChange(func(v View) {
		if v.ProgressVisible && v.Progress == nil && v.PercentText == IndeterminateText {
			mu.Lock()
			sawIndeterminate = true
			mu.Unlock()
		}
	})

	out := form.Submit(context.Background())
	require.Equal(t, OutcomeSuccess, out.Kind)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, sawIndeterminate)
}

// uploadRecorder answers 400 to the first upload and 200 afterwards,
// remembering the size of every file part it received.
type uploadRecorder struct {
	mu    sync.Mutex
	sizes []int
}

func (u *uploadRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	size := -1
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		if f, _, err := r.FormFile("file"); err == nil {
			b, _ := io.ReadAll(f)
			size = len(b)
		}
	}
	u.mu.Lock()
	u.sizes = append(u.sizes, size)
	first := len(u.sizes) == 1
	u.mu.Unlock()

	if first {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Некорректный email"}`)
		return
	}
	_, _ = io.WriteString(w, `{"ok":true,"id":9}`)
}

func (u *uploadRecorder) received() []int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]int{}, u.sizes...)
}

func TestSubmit_RetryResendsWholeFile(t *testing.T) {
	rec := &uploadRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	form := New(srv.URL, srv.Client())
	form.SetFields(Fields{Author: "A", Title: "T", Email: "a@b.ru"})
	form.PickFile(pdf(5000))

	first := form.Submit(context.Background())
	require.Equal(t, OutcomeAppError, first.Kind)
	assert.Equal(t, "Файл: paper.pdf (5 КБ)", form.View().FileLabel)

	second := form.Submit(context.Background())
	require.Equal(t, OutcomeSuccess, second.Kind)
	assert.Equal(t, []int{5000, 5000}, rec.received())
}

func TestSubmit_FailedStreamClearsFileSlot(t *testing.T) {
	rec := &uploadRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	form := New(srv.URL, srv.Client())
	stream := io.MultiReader(strings.NewReader("%PDF stream"))
	form.PickFile(&File{Name: "stream.pdf", Size: -1, Reader: stream})

	out := form.Submit(context.Background())
	require.Equal(t, OutcomeAppError, out.Kind)

	v := form.View()
	assert.False(t, v.FileLabelVisible)
	assert.Empty(t, v.FileLabel)
	assert.Equal(t, "Некорректный email", v.Alert.Text)

	form.PickFile(&File{Name: "again.pdf", Size: 4, Reader: strings.NewReader("%PDF")})
	require.Equal(t, OutcomeSuccess, form.Submit(context.Background()).Kind)
	assert.Equal(t, []int{11, 4}, rec.received())
}
