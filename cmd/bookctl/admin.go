package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"bookcollect/internal/console"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

const createdLayout = "02.01.2006, 15:04:05"

func yesFlag() cli.Flag {
	return &cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"}
}

func htmlFlag() cli.Flag {
	return &cli.BoolFlag{Name: "html", Usage: "print the rendered table markup"}
}

func idFlag() cli.Flag {
	return &cli.Int64Flag{Name: "id", Required: true}
}

func collectionFormFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title"},
		&cli.StringFlag{Name: "year", Usage: "release year"},
		&cli.StringFlag{Name: "number", Usage: "release number"},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "link", Usage: "publication link"},
		&cli.StringFlag{Name: "cover", Usage: "cover image path"},
		&cli.StringFlag{Name: "pdf", Usage: "collection PDF path"},
	}
}

func collectionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "collections",
		Usage: "manage collections",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Flags:  []cli.Flag{htmlFlag()},
				Action: listCollections,
			},
			{
				Name:   "create",
				Flags:  collectionFormFlags(),
				Action: saveCollection,
			},
			{
				Name:   "update",
				Usage:  "replace the given fields; omitted files stay as stored",
				Flags:  append([]cli.Flag{idFlag()}, collectionFormFlags()...),
				Action: saveCollection,
			},
			{
				Name:   "edit",
				Usage:  "show the edit form prefilled from the server",
				Flags:  []cli.Flag{idFlag()},
				Action: editCollection,
			},
			{
				Name:   "delete",
				Flags:  []cli.Flag{idFlag(), yesFlag()},
				Action: deleteCollection,
			},
		},
	}
}

func articlesCommand() *cli.Command {
	return &cli.Command{
		Name:  "articles",
		Usage: "manage article submissions",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Flags:  []cli.Flag{htmlFlag()},
				Action: listArticles,
			},
			{
				Name:   "delete",
				Flags:  []cli.Flag{idFlag(), yesFlag()},
				Action: deleteArticle,
			},
		},
	}
}

func newCollections(c *cli.Context) *console.Collections {
	client, ep := adminClient(c)
	return console.NewCollections(client, ep, confirmer(c), nil)
}

func newArticles(c *cli.Context) *console.Articles {
	client, ep := adminClient(c)
	return console.NewArticles(client, ep, confirmer(c), nil)
}

func listCollections(c *cli.Context) error {
	screen := newCollections(c)
	if err := screen.Load(c.Context); err != nil {
		return cli.Exit(fmt.Sprintf("load collections: %v", err), 1)
	}
	if c.Bool("html") {
		fmt.Fprintln(c.App.Writer, screen.Page().TableHTML())
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tНАЗВАНИЕ\tГОД\tНОМЕР\tОБЛОЖКА\tPDF")
	for _, it := range screen.Items() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Title,
			intOrDash(it.ReleaseYear), intOrDash(it.ReleaseNumber),
			strOrDash(it.CoverImage), strOrDash(it.PDFPath))
	}
	return tw.Flush()
}

func saveCollection(c *cli.Context) error {
	screen := newCollections(c)
	form := console.CollectionForm{}
	if c.IsSet("id") {
		if err := screen.Edit(c.Context, c.Int64("id")); err != nil {
			return cli.Exit(fmt.Sprintf("load collection: %v", err), 1)
		}
		if !screen.Page().ModalOpen() {
			return cli.Exit(fmt.Sprintf("Сборник с ID %d не найден", c.Int64("id")), 1)
		}
		form = screen.Page().Form()
	} else {
		screen.New()
	}

	if c.IsSet("title") {
		form.Title = c.String("title")
	}
	if c.IsSet("year") {
		form.ReleaseYear = c.String("year")
	}
	if c.IsSet("number") {
		form.ReleaseNumber = c.String("number")
	}
	if c.IsSet("description") {
		form.Description = c.String("description")
	}
	if c.IsSet("link") {
		form.PublicationLink = c.String("link")
	}

	var closers []func()
	defer func() {
		for _, fn := range closers {
			fn()
		}
	}()
	for _, f := range []struct {
		flag string
		dst  **console.FileField
	}{{"cover", &form.Cover}, {"pdf", &form.PDF}} {
		path := c.String(f.flag)
		if path == "" {
			continue
		}
		file, err := os.Open(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("open %s: %v", path, err), 1)
		}
		closers = append(closers, func() { file.Close() })
		*f.dst = &console.FileField{Name: filepath.Base(path), Reader: file}
		if info, err := file.Stat(); err == nil {
			fmt.Fprintf(c.App.ErrWriter, "%s: %s (%s)\n", f.flag, filepath.Base(path), humanize.Bytes(uint64(info.Size())))
		}
	}

	if err := screen.Submit(c.Context, form); err != nil {
		return cli.Exit(screen.Page().Alert(), 1)
	}
	fmt.Fprintf(c.App.Writer, "Сохранено. Сборников: %d\n", len(screen.Items()))
	return nil
}

func editCollection(c *cli.Context) error {
	screen := newCollections(c)
	id := c.Int64("id")
	if err := screen.Edit(c.Context, id); err != nil {
		return cli.Exit(fmt.Sprintf("load collection: %v", err), 1)
	}
	if !screen.Page().ModalOpen() {
		return cli.Exit(fmt.Sprintf("Сборник с ID %d не найден", id), 1)
	}

	form := screen.Page().Form()
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%d\n", form.ID)
	fmt.Fprintf(tw, "title\t%s\n", form.Title)
	fmt.Fprintf(tw, "year\t%s\n", form.ReleaseYear)
	fmt.Fprintf(tw, "number\t%s\n", form.ReleaseNumber)
	fmt.Fprintf(tw, "description\t%s\n", form.Description)
	fmt.Fprintf(tw, "link\t%s\n", form.PublicationLink)
	return tw.Flush()
}

func deleteCollection(c *cli.Context) error {
	screen := newCollections(c)
	if err := screen.Delete(c.Context, c.Int64("id")); err != nil {
		if alert := screen.Page().Alert(); alert != "" {
			return cli.Exit(alert, 1)
		}
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintf(c.App.Writer, "Сборников: %d\n", len(screen.Items()))
	return nil
}

func listArticles(c *cli.Context) error {
	screen := newArticles(c)
	if err := screen.Load(c.Context); err != nil {
		return cli.Exit(fmt.Sprintf("load articles: %v", err), 1)
	}
	if c.Bool("html") {
		fmt.Fprintln(c.App.Writer, screen.Page().TableHTML())
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tАВТОР\tНАЗВАНИЕ\tEMAIL\tСОЗДАНО\tФАЙЛ")
	for _, it := range screen.Items() {
		created := "-"
		if it.CreatedAt != nil {
			created = it.CreatedAt.In(time.Local).Format(createdLayout) + " (" + humanize.Time(*it.CreatedAt) + ")"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Author, it.Title, it.Email, created, screen.DownloadURL(it.ID))
	}
	return tw.Flush()
}

func deleteArticle(c *cli.Context) error {
	screen := newArticles(c)
	if err := screen.Delete(c.Context, c.Int64("id")); err != nil {
		if alert := screen.Page().Alert(); alert != "" {
			return cli.Exit(alert, 1)
		}
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintf(c.App.Writer, "Заявок: %d\n", len(screen.Items()))
	return nil
}

// confirmer asks on stderr and reads the answer from the app's stdin.
func confirmer(c *cli.Context) console.Confirmer {
	if c.Bool("yes") {
		return console.AlwaysConfirm
	}
	return promptConfirmer(c.App.Reader, c.App.ErrWriter)
}

func promptConfirmer(in io.Reader, out io.Writer) console.Confirmer {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "д", "да":
			return true
		}
		return false
	}
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func strOrDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
