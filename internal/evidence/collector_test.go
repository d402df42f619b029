package evidence

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

const serpFixture = `{
	"text_blocks": [
		{"type": "paragraph", "snippet": "Acme Corp reported record quarterly earnings, contradicting rumors of insolvency that circulated on social media this week."},
		{"type": "heading", "snippet": "Background"},
		{"type": "paragraph", "snippet": ""},
		{"type": "paragraph", "snippet": "Independent auditors confirmed the filings."},
		{"type": "paragraph", "snippet": "A third summary paragraph."},
		{"type": "paragraph", "snippet": "A fourth paragraph that exceeds the block cap."}
	],
	"references": [
		{"title": "Acme Q3 earnings beat expectations", "source": "Reuters", "link": "https://reuters.example/acme-q3", "snippet": "Earnings rose 12%."},
		{"title": "", "source": "Bloomberg", "link": "https://bloomberg.example/acme", "snippet": ""},
		{"title": "", "source": "", "link": "https://example.com/ref3"},
		{"title": "No link ref", "source": "Somewhere", "link": ""},
		{"title": "Ref five", "link": "https://example.com/ref5"},
		{"title": "Ref six", "link": "https://example.com/ref6"},
		{"title": "Ref seven over cap", "link": "https://example.com/ref7"}
	]
}`

func TestCollectOrdersAIBlocksBeforeReferences(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_ai_mode", r.URL.Query().Get("engine"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(serpFixture))
	}))
	defer srv.Close()

	c := NewCollector(Config{APIKey: "test-key", APIURL: srv.URL, Logger: testLogger()})
	results := c.Collect(context.Background(), "Acme Corp is going bankrupt according to insiders")

	require.Len(t, results, 8)

	// Three paragraph blocks first; heading and empty snippet skipped.
	assert.True(t, strings.HasPrefix(results[0].Title, "AI Summary: "))
	assert.Contains(t, results[0].Snippet, "record quarterly earnings")
	assert.Equal(t, results[0].Snippet, results[0].TextBlock)
	assert.Contains(t, results[0].URL, "google.com/search?q=")
	assert.Equal(t, "Independent auditors confirmed the filings.", results[1].Snippet)
	assert.Equal(t, "A third summary paragraph.", results[2].Snippet)

	// Then up to five references with a link.
	assert.Equal(t, "Acme Q3 earnings beat expectations", results[3].Title)
	assert.Equal(t, "https://reuters.example/acme-q3", results[3].URL)
	assert.Equal(t, "Bloomberg", results[4].Title)
	assert.Equal(t, "Reference", results[5].Title)
	assert.Equal(t, "Ref five", results[6].Title)
	assert.Equal(t, "Ref six", results[7].Title)

	assert.Equal(t, "Acme Corp is going bankrupt according to insiders", gotQuery)
}

func TestCollectTruncatesQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewCollector(Config{APIKey: "k", APIURL: srv.URL, Logger: testLogger()})
	c.Collect(context.Background(), strings.Repeat("a", 300))

	assert.Len(t, gotQuery, 200)
}

func TestCollectQuietFailures(t *testing.T) {
	t.Run("no api key", func(t *testing.T) {
		c := NewCollector(Config{Logger: testLogger()})
		assert.Empty(t, c.Collect(context.Background(), "anything"))
	})

	t.Run("non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()
		c := NewCollector(Config{APIKey: "k", APIURL: srv.URL, Logger: testLogger()})
		assert.Empty(t, c.Collect(context.Background(), "anything"))
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()
		c := NewCollector(Config{APIKey: "k", APIURL: srv.URL, Logger: testLogger()})
		assert.Empty(t, c.Collect(context.Background(), "anything"))
	})

	t.Run("blank text", func(t *testing.T) {
		c := NewCollector(Config{APIKey: "k", Logger: testLogger()})
		assert.Empty(t, c.Collect(context.Background(), "   "))
	})
}
