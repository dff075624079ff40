package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/constituents/internal/writer"
)

const pageHTML = `<html><head><title>NIFTY AUTO</title></head><body>
<a href="/IndexConstituent/ind_niftyautolist.csv">Download constituents</a>
</body></html>`

func newIndexSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/indices/equity/sectoral-indices/nifty-auto", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML)
	})
	mux.HandleFunc("/IndexConstituent/ind_niftyautolist.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Company Name,Symbol\nMaruti Suzuki India Ltd.,MARUTI\n")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, dir string, urls ...string) string {
	t.Helper()
	var list bytes.Buffer
	for _, u := range urls {
		fmt.Fprintf(&list, "      - %s\n", u)
	}
	body := fmt.Sprintf(`download_dir: %s
request_delay: 0
max_retries: 0
log_file: %s
categories:
  - name: Sectoral Indices
    urls:
%s`, filepath.Join(dir, "downloads"), filepath.Join(dir, "scraper.log"), list.String())

	path := filepath.Join(dir, "constituents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRunDownloadsAndSummarises(t *testing.T) {
	site := newIndexSite(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir,
		site.URL+"/indices/equity/sectoral-indices/nifty-auto",
		site.URL+"/indices/equity/sectoral-indices/nifty-missing",
	)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), CLIFlags{ConfigFile: cfgPath, Quiet: true}, &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.FileExists(t, filepath.Join(dir, "downloads", "sectoral_indices", "nifty-auto_constituents.csv"))
	assert.Contains(t, stdout.String(), "1 (50.0%)")
	assert.Contains(t, stdout.String(), "nifty-missing")

	got, err := writer.ReadSummary(filepath.Join(dir, "downloads", writer.SummaryFilename))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Success)
	assert.False(t, got[1].Success)

	logData, err := os.ReadFile(filepath.Join(dir, "scraper.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "run=")
}

func TestRunLogFileFlag(t *testing.T) {
	site := newIndexSite(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, site.URL+"/indices/equity/sectoral-indices/nifty-auto")
	logPath := filepath.Join(dir, "logs", "custom.log")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), CLIFlags{ConfigFile: cfgPath, LogFile: logPath, Quiet: true}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.FileExists(t, logPath)
}

func TestRunBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "constituents.yaml")
	require.NoError(t, os.WriteFile(path, []byte("request_delay: [oops\n"), 0644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), CLIFlags{ConfigFile: path}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error loading configuration")
}

func TestRunInterrupted(t *testing.T) {
	site := newIndexSite(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, site.URL+"/indices/equity/sectoral-indices/nifty-auto")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, CLIFlags{ConfigFile: cfgPath, Quiet: true}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Scraping interrupted by user")
}
