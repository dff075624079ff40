package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultHeaders mimic a desktop browser. Accept-Encoding is left to the
// transport so compressed bodies are decoded transparently.
var DefaultHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Cache-Control":             "max-age=0",
}

// StatusError reports a non-2xx response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Session is a reusable HTTP client that attaches the same headers to every
// request. One Session is shared by page retrieval and downloads.
type Session struct {
	client  *http.Client
	headers map[string]string
}

// NewSession creates a Session with the given per-request timeout
func NewSession(timeout time.Duration) *Session {
	return NewSessionWithClient(&http.Client{Timeout: timeout})
}

// NewSessionWithClient wraps an existing client, e.g. one with a custom transport
func NewSessionWithClient(client *http.Client) *Session {
	return &Session{
		client:  client,
		headers: DefaultHeaders,
	}
}

// Get issues a GET request. A non-2xx response is closed and reported as a
// *StatusError; on success the caller owns the response body.
func (s *Session) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return resp, nil
}
