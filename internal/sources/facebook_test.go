package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const facebookFixture = `{
  "results": [
    {
      "post_id": "98765",
      "from": {"name": "Acme Watch"},
      "message": "Acme is hiding something #Coverup #coverup",
      "created_time": 1717200000,
      "reactions": {"summary": {"total_count": 40}},
      "shares": {"count": 10},
      "comments": {"summary": {"total_count": 5}},
      "permalink_url": "https://facebook.com/98765",
      "full_picture": "https://scontent.example/pic.jpg"
    },
    {
      "post_id": "11111",
      "from": "PlainAuthor",
      "message": "",
      "story": ""
    },
    {
      "post_id": "22222",
      "author": {"username": "acme.fan"},
      "text": "Love Acme products"
    }
  ]
}`

func TestFacebookFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-RapidAPI-Key") != "rapid-key" {
			t.Errorf("missing rapidapi key header")
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("expected limit 10, got %q", got)
		}
		fmt.Fprint(w, facebookFixture)
	}))
	defer server.Close()

	client := NewFacebookClient("rapid-key", server.URL, "", testLogger())
	posts, err := client.Fetch(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts (empty text skipped), got %d", len(posts))
	}

	p := posts[0]
	if p.ID != "fb_98765" {
		t.Errorf("ID = %s", p.ID)
	}
	if p.Platform != "facebook" {
		t.Errorf("Platform = %s", p.Platform)
	}
	if p.Author != "Acme Watch" || p.Handle != "Acme Watch" {
		t.Errorf("author/handle = %s / %s", p.Author, p.Handle)
	}
	if p.Engagement != 55 {
		t.Errorf("Engagement = %d, want reactions+shares+comments", p.Engagement)
	}
	if p.Reach != defaultFacebookReach {
		t.Errorf("Reach = %d", p.Reach)
	}
	if len(p.Hashtags) != 1 || p.Hashtags[0] != "Coverup" {
		t.Errorf("Hashtags = %v", p.Hashtags)
	}
	if len(p.Media) != 1 || p.Media[0].URL != "https://scontent.example/pic.jpg" {
		t.Errorf("Media = %v", p.Media)
	}

	q := posts[1]
	if q.ID != "fb_22222" || q.Author != "acme.fan" {
		t.Errorf("second post = %s / %s", q.ID, q.Author)
	}
	if q.Engagement != defaultFacebookEngagement {
		t.Errorf("Engagement = %d, want default", q.Engagement)
	}
}

func TestFacebookFetchCapsAtTen(t *testing.T) {
	t.Parallel()

	results := make([]map[string]any, 15)
	for i := range results {
		results[i] = map[string]any{
			"post_id": fmt.Sprintf("p%d", i),
			"message": fmt.Sprintf("post number %d about Acme", i),
		}
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer server.Close()

	client := NewFacebookClient("rapid-key", server.URL, "", testLogger())
	posts, err := client.Fetch(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != maxFacebookPosts {
		t.Fatalf("expected %d posts, got %d", maxFacebookPosts, len(posts))
	}
}

func TestFacebookFetchWithoutKey(t *testing.T) {
	t.Parallel()

	client := NewFacebookClient("", "", "", testLogger())
	posts, err := client.Fetch(context.Background(), "Acme")
	if err != nil || posts != nil {
		t.Fatalf("expected quiet empty, got %v / %v", posts, err)
	}
}

func TestFacebookFetchEmptyResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer server.Close()

	client := NewFacebookClient("rapid-key", server.URL, "", testLogger())
	posts, err := client.Fetch(context.Background(), "Acme")
	if err != nil || len(posts) != 0 {
		t.Fatalf("expected quiet empty, got %v / %v", posts, err)
	}
}
