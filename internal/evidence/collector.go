package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crowsnest/internal/models"
	"crowsnest/pkg/logging"
)

const (
	defaultSerpURL = "https://serpapi.com/search.json"

	maxQueryChars  = 200
	maxAIBlocks    = 3
	maxReferences  = 5
	summaryPreview = 100
	requestTimeout = 20 * time.Second
)

type Config struct {
	APIKey string
	APIURL string
	Logger logging.Logger
}

// Collector gathers supporting evidence for a post by running its text
// through Google's AI mode on SerpAPI. Missing credentials or upstream
// failures yield an empty result set, never an error: evidence is a
// best-effort enrichment for high-risk posts.
type Collector struct {
	apiKey string
	apiURL string
	client *http.Client
	logger logging.Logger
}

func NewCollector(cfg Config) *Collector {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultSerpURL
	}
	return &Collector{
		apiKey: cfg.APIKey,
		apiURL: apiURL,
		client: &http.Client{Timeout: requestTimeout},
		logger: cfg.Logger,
	}
}

type serpAIResponse struct {
	TextBlocks []struct {
		Type    string `json:"type"`
		Snippet string `json:"snippet"`
	} `json:"text_blocks"`
	References []struct {
		Title   string `json:"title"`
		Source  string `json:"source"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"references"`
}

// Collect searches for evidence about the post text. AI summary
// paragraphs come first, followed by cited references.
func (c *Collector) Collect(ctx context.Context, postText string) []models.EvidenceResult {
	if c.apiKey == "" {
		c.logger.Debug("Evidence: SERPAPI_KEY not set, skipping evidence search")
		return nil
	}

	query := strings.TrimSpace(truncate(postText, maxQueryChars))
	if query == "" {
		return nil
	}

	reqURL := fmt.Sprintf("%s?engine=google_ai_mode&q=%s&api_key=%s",
		c.apiURL, url.QueryEscape(query), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.WithError(err).Warn("Evidence: failed to build search request")
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("Evidence: search request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Warn("Evidence: search returned non-200")
		return nil
	}

	var body serpAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.WithError(err).Warn("Evidence: failed to decode search response")
		return nil
	}

	searchURL := "https://www.google.com/search?q=" + url.QueryEscape(query)

	var results []models.EvidenceResult
	for _, block := range body.TextBlocks {
		if len(results) >= maxAIBlocks {
			break
		}
		if block.Type != "paragraph" || block.Snippet == "" {
			continue
		}
		results = append(results, models.EvidenceResult{
			Title:     "AI Summary: " + truncate(block.Snippet, summaryPreview),
			URL:       searchURL,
			Snippet:   block.Snippet,
			TextBlock: block.Snippet,
		})
	}

	refs := 0
	for _, ref := range body.References {
		if refs >= maxReferences {
			break
		}
		if ref.Link == "" {
			continue
		}
		title := ref.Title
		if title == "" {
			title = ref.Source
		}
		if title == "" {
			title = "Reference"
		}
		results = append(results, models.EvidenceResult{
			Title:   title,
			URL:     ref.Link,
			Snippet: ref.Snippet,
		})
		refs++
	}

	return results
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
