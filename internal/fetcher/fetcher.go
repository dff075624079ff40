// Package fetcher downloads constituent files over HTTP and stores them in
// an output directory.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/constituents/internal/writer"
)

const chunkSize = 8192

// Progress observes a download whose total size is known
type Progress interface {
	Transfer(name string, received, total int64)
}

// Config holds the download retry policy
type Config struct {
	// MaxRetries is the number of extra attempts after the first one.
	MaxRetries int
	RetryDelay time.Duration
	Progress   Progress
}

// Fetcher downloads files into the directory of its writer
type Fetcher struct {
	session *Session
	writer  *writer.FileWriter
	log     *log.Logger
	config  Config
}

// New creates a Fetcher storing files through w
func New(session *Session, w *writer.FileWriter, logger *log.Logger, config Config) *Fetcher {
	return &Fetcher{
		session: session,
		writer:  w,
		log:     logger,
		config:  config,
	}
}

// WithOutputDir returns a copy of the fetcher that writes into dir
func (f *Fetcher) WithOutputDir(dir string) (*Fetcher, error) {
	w, err := writer.New(dir)
	if err != nil {
		return nil, err
	}
	c := *f
	c.writer = w
	return &c, nil
}

// OutputDir is the directory downloads are written to
func (f *Fetcher) OutputDir() string {
	return f.writer.Dir()
}

// Fetch downloads rawURL and reports whether a file was written. Failures are
// logged, never returned.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, filename string) bool {
	f.log.Info("Attempting to download", "url", rawURL)

	path, n, err := f.Download(ctx, rawURL, filename)
	if err != nil {
		f.log.Error("Failed to download", "url", rawURL, "error", err)
		return false
	}

	f.log.Info("Successfully downloaded", "path", path, "bytes", n)
	return true
}

// Download fetches rawURL into the output directory, retrying transient
// failures, and returns the written path and byte count.
func (f *Fetcher) Download(ctx context.Context, rawURL, filename string) (string, int64, error) {
	var (
		path    string
		written int64
		attempt int
	)

	op := func() error {
		attempt++
		var err error
		path, written, err = f.downloadOnce(ctx, rawURL, filename)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		f.log.Warn("Download attempt failed, retrying",
			"url", rawURL,
			"attempt", attempt,
			"max_retries", f.config.MaxRetries,
			"wait", wait,
			"error", err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.config.RetryDelay), uint64(f.config.MaxRetries)),
		ctx,
	)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", 0, err
	}
	return path, written, nil
}

func (f *Fetcher) downloadOnce(ctx context.Context, rawURL, filename string) (string, int64, error) {
	resp, err := f.session.Get(ctx, rawURL)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	name := ResolveFilename(filename, resp.Header.Get("Content-Disposition"), rawURL)

	file, path, err := f.writer.Create(name)
	if err != nil {
		return "", 0, &storageError{err: err}
	}

	var n int64
	if resp.ContentLength > 0 {
		n, err = f.copyWithProgress(file, resp.Body, name, resp.ContentLength)
	} else {
		n, err = io.Copy(file, resp.Body)
	}
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = &storageError{err: closeErr}
	}
	if err != nil {
		return "", n, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, n, nil
}

func (f *Fetcher) copyWithProgress(dst io.Writer, src io.Reader, name string, total int64) (int64, error) {
	buf := make([]byte, chunkSize)
	var received int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return received, &storageError{err: err}
			}
			received += int64(n)
			f.log.Debug("Download progress", "file", name, "percent", fmt.Sprintf("%.1f", float64(received)/float64(total)*100))
			if f.config.Progress != nil {
				f.config.Progress.Transfer(name, received, total)
			}
		}
		if readErr == io.EOF {
			return received, nil
		}
		if readErr != nil {
			return received, readErr
		}
	}
}

// storageError marks local filesystem failures, which retrying cannot fix.
type storageError struct {
	err error
}

func (e *storageError) Error() string { return e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *storageError
	if errors.As(err, &se) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.StatusCode == http.StatusTooManyRequests || status.StatusCode >= 500
	}
	return true
}
