// Command bookctl submits manuscripts and manages the catalog over the
// BookCollect HTTP API.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"bookcollect/internal/config"
	"bookcollect/internal/console"

	"github.com/urfave/cli/v2"
)

func main() {
	config.LoadEnvFiles()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "bookctl",
		Usage:     "BookCollect client: manuscript submission and catalog administration",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		// main prints the error and picks the exit code.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Value:   "http://localhost:8080",
				Usage:   "API base URL",
				EnvVars: []string{"BOOKCTL_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "administrator session token (from POST /admin/login)",
				EnvVars: []string{"BOOKCTL_TOKEN"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 5 * time.Minute,
				Usage: "HTTP client timeout",
			},
		},
		Commands: []*cli.Command{
			submitCommand(),
			collectionsCommand(),
			articlesCommand(),
		},
	}
}

func httpClient(c *cli.Context) *http.Client {
	return &http.Client{Timeout: c.Duration("timeout")}
}

func adminClient(c *cli.Context) (*console.Client, console.Endpoints) {
	client := console.NewClient(httpClient(c), c.String("token"))
	return client, console.DefaultEndpoints(c.String("base-url"))
}
