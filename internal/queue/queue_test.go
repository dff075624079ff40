package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueKeepsOrderAndDropsDuplicates(t *testing.T) {
	q := New(
		"https://example.com/nifty-it",
		"https://example.com/nifty-realty",
		"https://example.com/nifty-it",
		"https://example.com/nifty-pse",
	)

	assert.Equal(t, 3, q.Total())
	assert.Equal(t, 3, q.Len())

	var got []string
	for {
		u, ok := q.Next()
		if !ok {
			break
		}
		got = append(got, u)
	}

	assert.Equal(t, []string{
		"https://example.com/nifty-it",
		"https://example.com/nifty-realty",
		"https://example.com/nifty-pse",
	}, got)
	assert.Zero(t, q.Len())
	assert.Equal(t, 3, q.Total())
}

func TestQueueKeepsURLsVerbatim(t *testing.T) {
	q := New(" https://example.com/nifty-it ", "https://example.com/nifty-it", "")

	assert.Equal(t, 3, q.Total())
	assert.False(t, q.Add(""))

	u, _ := q.Next()
	assert.Equal(t, " https://example.com/nifty-it ", u)
}

func TestQueueAddAfterDrain(t *testing.T) {
	q := New("https://example.com/a")
	_, _ = q.Next()

	assert.False(t, q.Add("https://example.com/a"))
	assert.True(t, q.Add("https://example.com/b"))

	u, ok := q.Next()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/b", u)
}
