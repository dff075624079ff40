package crawler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/constituents/internal/crawler"
	"github.com/go-scripts/constituents/internal/fetcher"
)

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nifty-it" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(linkedPageHTML))
	}))
	defer server.Close()

	src := crawler.NewHTTPSource(fetcher.NewSession(5 * time.Second))

	body, err := src.FetchPage(context.Background(), server.URL+"/nifty-it")
	require.NoError(t, err)
	assert.Equal(t, linkedPageHTML, string(body))

	_, err = src.FetchPage(context.Background(), server.URL+"/blocked")
	var status *fetcher.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusForbidden, status.StatusCode)
}

func TestBrowserSourceRendersScripts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if !chromeAvailable() {
		t.Skip("no Chrome/Chromium binary found")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div id="dl"></div><script>
document.getElementById('dl').innerHTML = '<a href="/IndexConstituent/ind_niftyitlist.csv">Index Constituent</a>';
</script></body></html>`))
	}))
	defer server.Close()

	src := crawler.NewBrowserSource(20 * time.Second)
	defer src.Close()

	body, err := src.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), `<a href="/IndexConstituent/ind_niftyitlist.csv">`)
}

func chromeAvailable() bool {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
