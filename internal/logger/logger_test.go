package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFileAndOut(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "scraper.log")

	l, closer, err := New(Options{File: path, Out: &buf})
	require.NoError(t, err)

	l.Info("Downloaded", "path", "downloads/nifty-it_constituents.csv")
	l.Debug("hidden at info level")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Downloaded")
	assert.Contains(t, string(data), "nifty-it_constituents.csv")
	assert.NotContains(t, string(data), "hidden")
}

func TestNewDebugLevel(t *testing.T) {
	var buf bytes.Buffer

	l, closer, err := New(Options{Debug: true, Out: &buf})
	require.NoError(t, err)
	defer closer.Close()

	l.Debug("strategy matched", "strategy", "direct-link")
	assert.Contains(t, buf.String(), "strategy matched")
}
