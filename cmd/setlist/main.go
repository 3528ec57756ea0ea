// Command setlist prints the song titles of a setlist page and mints an
// ES256 developer token for the music API.
//
// Usage: setlist [-env .env] [-render] [-timeout 60s] <setlist URL>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"setlist-scraper/internal/config"
	"setlist-scraper/internal/fetch"
	"setlist-scraper/internal/keystore"
	"setlist-scraper/internal/setlist"
	"setlist-scraper/internal/token"
)

var errMissingArgument = errors.New("missing argument: please provide a target URL")

type options struct {
	envFile string
	render  bool
	timeout time.Duration
	debug   bool
	url     string
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if opts.debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	ctx = log.WithContext(ctx)

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Error().Err(err).Msg("Run failed")
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("setlist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.envFile, "env", ".env", "Path to dotenv file with API credentials")
	fs.BoolVar(&opts.render, "render", false, "Render the page in headless Chrome before extracting")
	fs.DurationVar(&opts.timeout, "timeout", 60*time.Second, "Overall deadline for the run")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: setlist [options] <setlist URL>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return options{}, errMissingArgument
	}
	opts.url = fs.Arg(0)

	return opts, nil
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	log := zerolog.Ctx(ctx)

	found, err := config.LoadDotEnv(opts.envFile)
	if err != nil {
		return err
	}
	if !found {
		log.Debug().Str("path", opts.envFile).Msg("Dotenv file not found, using process environment")
	}
	creds, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	var fetcher fetch.Fetcher = fetch.NewClient(fetch.WithTimeout(opts.timeout))
	if opts.render {
		fetcher = fetch.NewBrowser("")
	}

	fmt.Fprintf(stdout, "Target URL: %s\n", opts.url)
	page, err := fetcher.Fetch(ctx, opts.url)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Response: %s %s (%d bytes) from %s\n", page.Status, page.ContentType, len(page.Body), page.FinalURL)

	extractor := setlist.Default()
	titles, err := extractor.Extract(page.Body)
	if err != nil {
		return fmt.Errorf("extracting setlist from %s: %w", opts.url, err)
	}
	for _, title := range titles {
		fmt.Fprintf(stdout, "Song name: %s\n", title)
	}
	fmt.Fprintf(stdout, "%d songs found\n", len(titles))

	keys := &keystore.Auto{CredentialsFile: creds.GCSCredentialsFile}
	defer keys.Close()

	fmt.Fprintln(stdout, "Creating JWT")
	jwt, err := token.NewMinter(creds, keys).Mint(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "JWT: %s\n", jwt)
	fmt.Fprintln(stdout, "Done!")

	return nil
}
