package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/go-scripts/constituents/internal/batch"
	"github.com/go-scripts/constituents/internal/config"
	"github.com/go-scripts/constituents/internal/crawler"
	"github.com/go-scripts/constituents/internal/discovery"
	"github.com/go-scripts/constituents/internal/fetcher"
	"github.com/go-scripts/constituents/internal/logger"
	"github.com/go-scripts/constituents/internal/progress"
	"github.com/go-scripts/constituents/internal/types"
	"github.com/go-scripts/constituents/internal/writer"
)

// CLIFlags holds the command line flags
type CLIFlags struct {
	ConfigFile string `help:"Path to configuration file" default:"constituents.yaml" short:"c" name:"config"`
	Debug      bool   `help:"Enable debug logging" default:"false"`
	LogFile    string `help:"Override the log file path" name:"log-file"`
	Quiet      bool   `help:"Hide progress bars and the wait spinner" short:"q"`
}

func main() {
	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("constituents"),
		kong.Description("Download index constituent CSV files from index pages."),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, flags, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one batch and returns the process exit code
func run(ctx context.Context, flags CLIFlags, stdout, stderr io.Writer) int {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	if flags.LogFile != "" {
		cfg.LogFile = flags.LogFile
	}

	l, closer, err := logger.New(logger.Options{Debug: flags.Debug, File: cfg.LogFile, Out: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer closer.Close()
	l = l.With("run", uuid.NewString())

	var tracker *progress.Tracker
	if flags.Quiet {
		tracker = progress.New(nil)
	} else {
		tracker = progress.New(stderr)
	}

	summary, err := scrape(ctx, cfg, l, tracker)
	if summary != nil {
		batch.RenderSummary(stdout, summary)
	}

	switch {
	case errors.Is(err, context.Canceled):
		l.Warn("Scraping interrupted by user")
		return 1
	case err != nil:
		l.Error("Fatal error", "error", err)
		return 1
	}
	return 0
}

// scrape wires the pipeline from cfg and runs every configured category
func scrape(ctx context.Context, cfg *config.Configuration, l *log.Logger, tracker *progress.Tracker) (*types.Summary, error) {
	l.Info("Starting scraper",
		"download_dir", cfg.DownloadDir,
		"categories", len(cfg.Categories),
		"render_js", cfg.RenderJS)

	session := fetcher.NewSession(cfg.TimeoutDuration())

	var source crawler.PageSource = crawler.NewHTTPSource(session)
	if cfg.RenderJS {
		browser := crawler.NewBrowserSource(cfg.TimeoutDuration())
		defer browser.Close()
		source = browser
	}

	w, err := writer.New(cfg.DownloadDir)
	if err != nil {
		return nil, err
	}

	f := fetcher.New(session, w, l, fetcher.Config{
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelayDuration(),
		Progress:   tracker,
	})
	c := crawler.New(crawler.Configuration{TimestampFiles: cfg.TimestampFiles}, source, discovery.New(l), f, l)

	factory := func(dir string) (batch.PageProcessor, error) {
		scoped, err := c.WithOutputDir(dir)
		if err != nil {
			return nil, err
		}
		return scoped, nil
	}

	o := batch.New(batch.Configuration{
		Delay:              cfg.RequestDelayDuration(),
		DownloadDir:        cfg.DownloadDir,
		OrganizeByCategory: cfg.OrganizeByCategory,
		CreateSummary:      cfg.CreateSummary,
	}, factory, w, l, batch.WithTracker(tracker))

	return o.RunAll(ctx, cfg.Categories)
}
