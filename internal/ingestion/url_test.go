package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonathan/smart-resume/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	html  string
	err   error
	calls int
}

func (f *fakeRenderer) Render(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.html, f.err
}

func postingServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestURLIngester_Ingest(t *testing.T) {
	long := strings.Repeat("Build reliable Go services. ", 30)
	server := postingServer(t, `<html><body><nav>Menu</nav><div class="job-description"><h2>About</h2><p>`+long+`</p></div></body></html>`)
	renderer := &fakeRenderer{}

	ing := &URLIngester{Renderer: renderer}
	text, src, err := ing.Ingest(context.Background(), server.URL)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "About\nBuild reliable Go services."))
	assert.NotContains(t, text, "Menu")
	assert.Equal(t, SourceURL, src.Kind)
	assert.Equal(t, server.URL, src.URL)
	assert.Equal(t, string(fetch.PlatformUnknown), src.Platform)
	assert.False(t, src.Rendered)
	assert.Zero(t, renderer.calls)
}

func TestURLIngester_BrowserFallback(t *testing.T) {
	server := postingServer(t, `<html><body><div id="app">Loading</div></body></html>`)
	renderer := &fakeRenderer{html: `<html><body><main>` + strings.Repeat("Rendered posting text. ", 40) + `</main></body></html>`}

	ing := &URLIngester{Renderer: renderer}
	text, src, err := ing.Ingest(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, 1, renderer.calls)
	assert.True(t, src.Rendered)
	assert.Contains(t, text, "Rendered posting text.")
}

func TestURLIngester_BrowserFailureKeepsHTTPText(t *testing.T) {
	server := postingServer(t, `<html><body><main>Short posting</main></body></html>`)
	renderer := &fakeRenderer{err: errors.New("chrome not installed")}

	ing := &URLIngester{Renderer: renderer}
	text, src, err := ing.Ingest(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Short posting", text)
	assert.False(t, src.Rendered)
}

func TestURLIngester_Errors(t *testing.T) {
	ing := &URLIngester{}

	_, _, err := ing.Ingest(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrInvalidURL)

	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	_, _, err = ing.Ingest(context.Background(), notFound.URL)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)

	empty := postingServer(t, `<html><body><script>var x = 1;</script></body></html>`)
	_, _, err = ing.Ingest(context.Background(), empty.URL)
	assert.ErrorIs(t, err, ErrEmptyContent)
}
