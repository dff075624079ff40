package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSummary(t *testing.T) {
	now := time.Now()
	outcomes := []Outcome{
		{Category: "Sectoral Indices", URL: "https://example.com/a", Success: true, Timestamp: now},
		{Category: "Sectoral Indices", URL: "https://example.com/b", Success: false, Timestamp: now},
		{Category: "Sectoral Indices", URL: "https://example.com/c", Success: true, Timestamp: now},
	}

	s := NewSummary(outcomes, 3*time.Second)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, []string{"https://example.com/b"}, s.FailedURLs)
	assert.InDelta(t, 66.67, s.SuccessRate(), 0.01)
	assert.InDelta(t, 33.33, s.FailureRate(), 0.01)
	assert.Equal(t, 3*time.Second, s.Duration)
}

func TestNewSummaryEmpty(t *testing.T) {
	s := NewSummary(nil, 0)

	assert.Zero(t, s.Total)
	assert.Zero(t, s.SuccessRate())
	assert.Zero(t, s.FailureRate())
	assert.Empty(t, s.FailedURLs)
}
