package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"
)

// Tracker renders download progress bars, page counts and the wait spinner
// shown between requests. A Tracker with a nil writer stays silent.
type Tracker struct {
	out       io.Writer
	bar       progress.Model
	total     int
	processed int
	mu        sync.Mutex
}

// New creates a Tracker writing to out
func New(out io.Writer) *Tracker {
	return &Tracker{
		out: out,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Transfer redraws the bar for a file being downloaded
func (t *Tracker) Transfer(name string, received, total int64) {
	if t.out == nil || total <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	frac := float64(received) / float64(total)
	if frac > 1 {
		frac = 1
	}
	fmt.Fprintf(t.out, "\r%s %s", name, t.bar.ViewAs(frac))
	if received >= total {
		fmt.Fprintln(t.out)
	}
}

// SetTotalPages sets the number of pages in the current batch
func (t *Tracker) SetTotalPages(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = total
	t.processed = 0
}

// FinishPage records a processed page and redraws the batch bar
func (t *Tracker) FinishPage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed++

	if t.out != nil && t.total > 0 {
		fmt.Fprintf(t.out, "\rPages: %s %d/%d\n",
			t.bar.ViewAs(float64(t.processed)/float64(t.total)),
			t.processed,
			t.total)
	}
}

// Progress returns the fraction of pages processed
func (t *Tracker) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.total == 0 {
		return 0
	}
	return float64(t.processed) / float64(t.total)
}

// Wait blocks for d or until ctx is done, spinning while it waits
func (t *Tracker) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	if t.out != nil {
		s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(t.out))
		if f, ok := t.out.(*os.File); ok {
			s.WriterFile = f
		}
		s.Suffix = fmt.Sprintf(" waiting %s before next request", d)
		s.Start()
		defer s.Stop()
	}

	return Sleep(ctx, d)
}

// Sleep pauses for d unless ctx is cancelled first
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
