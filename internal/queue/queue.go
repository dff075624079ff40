package queue

import "sync"

// Queue is an ordered list of page URLs. Each URL is admitted once, so every
// page produces exactly one outcome per pass.
type Queue struct {
	urls  []string
	seen  map[string]bool
	total int
	mu    sync.Mutex
}

// New creates a Queue holding urls in their original order
func New(urls ...string) *Queue {
	q := &Queue{
		urls: make([]string, 0, len(urls)),
		seen: make(map[string]bool, len(urls)),
	}
	for _, u := range urls {
		q.Add(u)
	}
	return q
}

// Add appends url unless it is already queued. URLs are compared verbatim.
func (q *Queue) Add(url string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.seen[url] {
		return false
	}
	q.seen[url] = true
	q.urls = append(q.urls, url)
	q.total++
	return true
}

// Next returns the next URL to process
func (q *Queue) Next() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.urls) == 0 {
		return "", false
	}

	url := q.urls[0]
	q.urls = q.urls[1:]
	return url, true
}

// Len returns the number of URLs still waiting
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.urls)
}

// Total returns how many distinct URLs were ever admitted
func (q *Queue) Total() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.total
}
