package crawler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/go-scripts/constituents/internal/fetcher"
)

// maxPageBytes caps how much of an index page is read.
const maxPageBytes = 10 * 1024 * 1024

// HTTPSource fetches pages with a plain GET through the shared session
type HTTPSource struct {
	session *fetcher.Session
}

// NewHTTPSource creates a PageSource backed by session
func NewHTTPSource(session *fetcher.Session) *HTTPSource {
	return &HTTPSource{session: session}
}

// FetchPage returns the raw page body
func (s *HTTPSource) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	resp, err := s.session.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return body, nil
}

// BrowserSource renders pages in headless Chrome so links injected by
// scripts are present in the returned HTML
type BrowserSource struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	timeout       time.Duration
}

// NewBrowserSource starts a shared headless browser. Close releases it.
func NewBrowserSource(timeout time.Duration) *BrowserSource {
	userAgent := fetcher.DefaultHeaders["User-Agent"]
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent(userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &BrowserSource{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		timeout:       timeout,
	}
}

// FetchPage navigates a fresh tab to pageURL and returns the rendered document
func (s *BrowserSource) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	defer cancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, s.timeout)
	defer timeoutCancel()

	// stop the tab when the batch is interrupted
	stop := context.AfterFunc(ctx, timeoutCancel)
	defer stop()

	var pageHTML string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &pageHTML),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	return []byte(pageHTML), nil
}

// Close shuts the browser down
func (s *BrowserSource) Close() {
	s.browserCancel()
	s.allocCancel()
}
