package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bookcollect/internal/submitform"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "submit a manuscript (PDF, DOCX or ODT)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "author", Required: true},
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "file", Required: true, Usage: "manuscript path, or - for stdin"},
			&cli.StringFlag{Name: "name", Usage: "file name sent with stdin uploads", Value: "manuscript.pdf"},
		},
		Action: runSubmit,
	}
}

func runSubmit(c *cli.Context) error {
	file, closeFile, err := openManuscript(c.App.Reader, c.String("file"), c.String("name"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer closeFile()

	action := strings.TrimRight(c.String("base-url"), "/") + "/article"
	form := submitform.New(action, httpClient(c))
	form.OnChange(newProgressPrinter(c.App.ErrWriter).print)

	form.SetFields(submitform.Fields{
		Author: c.String("author"),
		Title:  c.String("title"),
		Email:  c.String("email"),
	})
	form.PickFile(file)
	if file.Size >= 0 {
		fmt.Fprintf(c.App.ErrWriter, "%s, %s\n", form.View().FileLabel, humanize.Bytes(uint64(file.Size)))
	}

	out := form.Submit(c.Context)
	if out.Kind != submitform.OutcomeSuccess {
		return cli.Exit(out.Message, 1)
	}
	fmt.Fprintln(c.App.Writer, out.Message)
	return nil
}

func openManuscript(stdin io.Reader, path, stdinName string) (*submitform.File, func(), error) {
	if path == "-" {
		return &submitform.File{Name: stdinName, Size: -1, Reader: stdin}, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &submitform.File{Name: filepath.Base(path), Size: info.Size(), Reader: f}, func() { f.Close() }, nil
}

// progressPrinter writes a line each time the progress text changes.
type progressPrinter struct {
	w    io.Writer
	mu   sync.Mutex
	last string
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w}
}

func (p *progressPrinter) print(v submitform.View) {
	if !v.ProgressVisible || v.PercentText == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if v.PercentText == p.last {
		return
	}
	p.last = v.PercentText
	fmt.Fprintf(p.w, "%s %s\n", v.SubmitText, v.PercentText)
}
