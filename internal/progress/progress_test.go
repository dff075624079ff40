package progress

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferWritesBar(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)

	tr.Transfer("nifty-it_constituents.csv", 50, 100)
	assert.Contains(t, buf.String(), "nifty-it_constituents.csv")
	assert.Contains(t, buf.String(), "50%")
	assert.NotContains(t, buf.String(), "\n")

	tr.Transfer("nifty-it_constituents.csv", 100, 100)
	assert.Contains(t, buf.String(), "100%")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestTransferUnknownSize(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Transfer("file.csv", 10, 0)
	assert.Zero(t, buf.Len())
}

func TestSilentTracker(t *testing.T) {
	tr := New(nil)
	tr.SetTotalPages(2)
	tr.Transfer("file.csv", 1, 2)
	tr.FinishPage()
	assert.Equal(t, 0.5, tr.Progress())
}

func TestPageProgress(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	assert.Zero(t, tr.Progress())

	tr.SetTotalPages(4)
	tr.FinishPage()
	tr.FinishPage()
	tr.FinishPage()

	assert.Equal(t, 0.75, tr.Progress())
	assert.Contains(t, buf.String(), "3/4")

	tr.SetTotalPages(1)
	assert.Zero(t, tr.Progress())
}

func TestWaitElapses(t *testing.T) {
	start := time.Now()
	require.NoError(t, New(nil).Wait(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := New(&bytes.Buffer{}).Wait(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitZeroDuration(t *testing.T) {
	assert.NoError(t, New(nil).Wait(context.Background(), 0))
}
