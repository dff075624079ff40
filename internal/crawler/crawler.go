package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/constituents/internal/discovery"
	"github.com/go-scripts/constituents/internal/fetcher"
)

const unknownIndex = "unknown_index"

// PageSource retrieves the HTML of an index page
type PageSource interface {
	FetchPage(ctx context.Context, pageURL string) ([]byte, error)
}

// Configuration holds the page processing settings
type Configuration struct {
	// TimestampFiles appends the processing time to output file names.
	TimestampFiles bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// Crawler turns one index page URL into a downloaded constituent file
type Crawler struct {
	config  Configuration
	source  PageSource
	engine  *discovery.Engine
	fetcher *fetcher.Fetcher
	log     *log.Logger
}

// New creates a new Crawler instance
func New(config Configuration, source PageSource, engine *discovery.Engine, f *fetcher.Fetcher, logger *log.Logger) *Crawler {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Crawler{
		config:  config,
		source:  source,
		engine:  engine,
		fetcher: f,
		log:     logger,
	}
}

// WithOutputDir returns a Crawler whose downloads land in dir
func (c *Crawler) WithOutputDir(dir string) (*Crawler, error) {
	f, err := c.fetcher.WithOutputDir(dir)
	if err != nil {
		return nil, err
	}
	cp := *c
	cp.fetcher = f
	return &cp, nil
}

// Process fetches pageURL, locates its constituent file link (or falls back
// to the conventional location) and downloads it. Errors are logged and
// reported as false.
func (c *Crawler) Process(ctx context.Context, pageURL string) bool {
	c.log.Info("Processing", "url", pageURL)

	link, err := c.resolveLink(ctx, pageURL)
	if err != nil {
		c.log.Error("Error accessing page", "url", pageURL, "error", err)
		return false
	}

	return c.fetcher.Fetch(ctx, link, c.OutputFilename(pageURL))
}

func (c *Crawler) resolveLink(ctx context.Context, pageURL string) (string, error) {
	body, err := c.source.FetchPage(ctx, pageURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	c.log.Debug("Parsed page", "url", pageURL, "title", extractTitle(doc))

	if link, _, ok := c.engine.Find(doc, pageURL); ok {
		return link, nil
	}

	fallback, err := FallbackURL(pageURL)
	if err != nil {
		return "", err
	}
	c.log.Warn("Could not find constituent link, trying constructed URL", "url", pageURL, "fallback", fallback)
	return fallback, nil
}

// OutputFilename names the stored file after the page's index,
// e.g. nifty-it_constituents.csv
func (c *Crawler) OutputFilename(pageURL string) string {
	name := IndexName(pageURL) + "_constituents"
	if c.config.TimestampFiles {
		name += "_" + c.config.Now().Format("20060102_150405")
	}
	return name + ".csv"
}

// IndexName is the last non-empty path segment of pageURL
func IndexName(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return unknownIndex
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return unknownIndex
}

// FallbackURL builds the conventional constituent file location for a page:
// <scheme>://<host>/IndexConstituent/ind_<index>list.csv
func FallbackURL(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	ref := &url.URL{Path: "/IndexConstituent/ind_" + IndexName(pageURL) + "list.csv"}
	return u.ResolveReference(ref).String(), nil
}

func extractTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}
