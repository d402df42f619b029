package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const newsFixture = `{
  "news_results": [
    {
      "position": 1,
      "title": "Acme under investigation",
      "snippet": "Regulators opened a probe into Acme Corp.",
      "source": {"name": "Reuters"},
      "link": "https://reuters.example/acme"
    },
    {
      "position": 2,
      "title": "Acme stock rises",
      "source": "Bloomberg"
    },
    {
      "title": ""
    }
  ]
}`

func TestNewsFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("engine"); got != "google_news" {
			t.Errorf("expected engine google_news, got %q", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "serp-key" {
			t.Errorf("expected api key, got %q", got)
		}
		fmt.Fprint(w, newsFixture)
	}))
	defer server.Close()

	client := NewNewsClient("serp-key", server.URL, testLogger())
	posts, err := client.Fetch(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts (empty title skipped), got %d", len(posts))
	}

	p := posts[0]
	if p.Platform != "news" {
		t.Errorf("Platform = %s", p.Platform)
	}
	if p.Author != "Reuters" || p.Handle != "Reuters" {
		t.Errorf("author/handle = %s / %s", p.Author, p.Handle)
	}
	if p.Content != "Acme under investigation — Regulators opened a probe into Acme Corp." {
		t.Errorf("Content = %q", p.Content)
	}
	if p.Engagement != 5000 {
		t.Errorf("Engagement = %d, want (11-1)*500", p.Engagement)
	}
	if p.Reach != defaultNewsReach {
		t.Errorf("Reach = %d", p.Reach)
	}
	if p.URL != "https://reuters.example/acme" {
		t.Errorf("URL = %s", p.URL)
	}

	// Source given as a bare string instead of an object.
	if posts[1].Author != "Bloomberg" {
		t.Errorf("Author = %s", posts[1].Author)
	}
	if posts[1].Engagement != 4500 {
		t.Errorf("Engagement = %d, want (11-2)*500", posts[1].Engagement)
	}
}

func TestNewsIDStableForSameTitle(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, newsFixture)
	}))
	defer server.Close()

	client := NewNewsClient("serp-key", server.URL, testLogger())
	first, _ := client.Fetch(context.Background(), "Acme")
	second, _ := client.Fetch(context.Background(), "Acme")
	if first[0].ID != second[0].ID {
		t.Fatalf("expected stable id, got %s vs %s", first[0].ID, second[0].ID)
	}
	if first[0].ID == first[1].ID {
		t.Fatalf("expected distinct ids per article")
	}
}

func TestNewsFetchWithoutKey(t *testing.T) {
	t.Parallel()

	client := NewNewsClient("", "", testLogger())
	posts, err := client.Fetch(context.Background(), "Acme")
	if err != nil || posts != nil {
		t.Fatalf("expected quiet empty, got %v / %v", posts, err)
	}
}

func TestNewsFetchNon200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewNewsClient("serp-key", server.URL, testLogger())
	posts, err := client.Fetch(context.Background(), "Acme")
	if err != nil || len(posts) != 0 {
		t.Fatalf("expected quiet empty on non-200, got %v / %v", posts, err)
	}
}
