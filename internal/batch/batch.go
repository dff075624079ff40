package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/constituents/internal/progress"
	"github.com/go-scripts/constituents/internal/queue"
	"github.com/go-scripts/constituents/internal/types"
	"github.com/go-scripts/constituents/internal/writer"
)

// PageProcessor handles a single index page URL
type PageProcessor interface {
	Process(ctx context.Context, pageURL string) bool
}

// ProcessorFactory returns a PageProcessor that stores its files in dir
type ProcessorFactory func(dir string) (PageProcessor, error)

// Configuration holds the batch settings
type Configuration struct {
	Delay              time.Duration
	DownloadDir        string
	OrganizeByCategory bool
	CreateSummary      bool
}

// Option customises an Orchestrator
type Option func(*Orchestrator)

// WithTracker reports page progress and spins during delays
func WithTracker(t *progress.Tracker) Option {
	return func(o *Orchestrator) { o.tracker = t }
}

// WithSleep replaces the delay between requests
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// WithClock replaces time.Now for outcome timestamps and run duration
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator processes page URLs one after another and keeps the outcome log
type Orchestrator struct {
	config   Configuration
	factory  ProcessorFactory
	writer   *writer.FileWriter
	log      *log.Logger
	tracker  *progress.Tracker
	sleep    func(context.Context, time.Duration) error
	now      func() time.Time
	outcomes []types.Outcome
	mu       sync.Mutex
}

// New creates an Orchestrator. w is rooted at the download directory and
// receives the run summary.
func New(config Configuration, factory ProcessorFactory, w *writer.FileWriter, logger *log.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		config:  config,
		factory: factory,
		writer:  w,
		log:     logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.sleep == nil {
		if o.tracker != nil {
			o.sleep = o.tracker.Wait
		} else {
			o.sleep = progress.Sleep
		}
	}
	return o
}

// Run processes urls in order, pausing between consecutive requests, and
// returns the result keyed by each input URL. Duplicate URLs are processed
// once; blank entries are recorded as failed without a request. A cancelled
// ctx stops the loop before the next URL.
func (o *Orchestrator) Run(ctx context.Context, category string, urls []string) map[string]bool {
	q := queue.New()
	for _, u := range urls {
		if !q.Add(u) {
			o.log.Warn("Skipping duplicate URL", "category", category, "url", u)
		}
	}

	results := make(map[string]bool, q.Len())
	total := q.Total()
	if total == 0 {
		return results
	}

	processor, err := o.factory(o.categoryDir(category))
	if err != nil {
		o.log.Error("Error preparing output directory", "category", category, "error", err)
		for u, ok := q.Next(); ok; u, ok = q.Next() {
			results[u] = false
			o.record(category, u, false)
		}
		return results
	}

	if o.tracker != nil {
		o.tracker.SetTotalPages(total)
	}

	requested := false
	for i := 1; ; i++ {
		u, ok := q.Next()
		if !ok || ctx.Err() != nil {
			break
		}

		pageURL := strings.TrimSpace(u)
		if pageURL == "" {
			o.log.Warn("Skipping blank URL", "category", category, "position", i)
			results[u] = false
			o.record(category, u, false)
			o.finishPage()
			continue
		}

		if requested {
			o.log.Debug("Waiting before next request", "delay", o.config.Delay)
			if err := o.sleep(ctx, o.config.Delay); err != nil {
				break
			}
		}
		requested = true

		o.log.Info(fmt.Sprintf("Processing %d/%d", i, total), "category", category, "url", pageURL)
		success := processor.Process(ctx, pageURL)
		results[u] = success
		o.record(category, u, success)
		o.finishPage()
	}

	return results
}

// RunAll runs every category in order, logs the summary and persists it when
// configured. Outcomes gathered before a cancellation are still summarised,
// and the ctx error is returned alongside the summary.
func (o *Orchestrator) RunAll(ctx context.Context, categories []types.Category) (*types.Summary, error) {
	start := o.now()

	for _, c := range categories {
		if ctx.Err() != nil {
			break
		}
		o.log.Info("Starting category", "category", c.Name, "urls", len(c.URLs))
		o.Run(ctx, c.Name, c.URLs)
	}

	outcomes := o.Outcomes()
	summary := types.NewSummary(outcomes, o.now().Sub(start))
	o.logSummary(summary)

	if o.config.CreateSummary {
		path, err := o.writer.WriteSummary(outcomes)
		if err != nil {
			return summary, fmt.Errorf("failed to save summary: %w", err)
		}
		o.log.Info("Summary saved", "path", path)
	}

	return summary, ctx.Err()
}

// Outcomes returns a copy of every outcome recorded so far, in order
func (o *Orchestrator) Outcomes() []types.Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]types.Outcome(nil), o.outcomes...)
}

func (o *Orchestrator) record(category, pageURL string, success bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, types.Outcome{
		Category:  category,
		URL:       pageURL,
		Success:   success,
		Timestamp: o.now(),
	})
}

func (o *Orchestrator) finishPage() {
	if o.tracker != nil {
		o.tracker.FinishPage()
	}
}

func (o *Orchestrator) categoryDir(category string) string {
	if !o.config.OrganizeByCategory {
		return o.config.DownloadDir
	}
	return writer.CategoryDir(o.config.DownloadDir, category)
}

func (o *Orchestrator) logSummary(s *types.Summary) {
	o.log.Info("Scraping complete",
		"total", s.Total,
		"successful", s.Succeeded,
		"success_rate", fmt.Sprintf("%.1f%%", s.SuccessRate()),
		"failed", s.Failed,
		"failure_rate", fmt.Sprintf("%.1f%%", s.FailureRate()),
		"duration", s.Duration.Round(time.Millisecond))

	for _, u := range s.FailedURLs {
		o.log.Warn("Failed URL", "url", u)
	}
}
