package sources

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
	defaultNewsURL = "https://serpapi.com/search.json"
	maxNewsPosts   = 20

	defaultNewsReach = 80000
)

// NewsClient fetches Google News results through SerpAPI.
type NewsClient struct {
	apiKey string
	apiURL string
	client *http.Client
	logger logging.Logger
}

func NewNewsClient(apiKey, apiURL string, logger logging.Logger) *NewsClient {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultNewsURL
	}
	return &NewsClient{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (c *NewsClient) Name() string { return "News" }

func (c *NewsClient) Fetch(ctx context.Context, keyword string) ([]models.Post, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		c.logger.Warn("News: SerpAPI key not configured")
		return nil, nil
	}

	endpoint, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse news url: %w", err)
	}
	q := endpoint.Query()
	q.Set("engine", "google_news")
	q.Set("q", keyword)
	q.Set("api_key", c.apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create news request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("News request failed")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Warn("News returned non-200")
		return nil, nil
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WithError(err).Warn("News: malformed response payload")
		return nil, nil
	}

	posts := c.extractPosts(payload, keyword)
	c.logger.WithFields(logging.Fields{"keyword": keyword, "count": len(posts)}).Info("News fetch complete")
	return posts, nil
}

func (c *NewsClient) extractPosts(payload map[string]any, keyword string) []models.Post {
	results := asArray(dig(payload, "news_results"))
	now := time.Now()

	var posts []models.Post
	for _, item := range results {
		if len(posts) >= maxNewsPosts {
			break
		}

		n := asObject(item)
		if n == nil {
			continue
		}

		sourceName := probeString(n, "source.name", "source")
		if sourceName == "" {
			sourceName = "News Source"
		}
		title := probeString(n, "title")
		snippet := probeString(n, "snippet")
		text := title
		if snippet != "" {
			text = title + " — " + snippet
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		// Search position stands in for engagement: articles ranked
		// higher are assumed to draw more attention.
		position := probeInt(n, "position")
		if position == 0 {
			position = 999
		}
		engagement := (11 - position) * 500
		if engagement < 1 {
			engagement = 1
		}

		posts = append(posts, models.Post{
			ID:         fmt.Sprintf("news_%d_%d", position, titleChecksum(title)),
			Platform:   models.PlatformNews,
			Author:     sourceName,
			Handle:     sourceName,
			Timestamp:  models.FormatRelativeTimestamp(now, now),
			Content:    text,
			RiskScore:  models.PlaceholderRiskScore,
			Sentiment:  models.PlaceholderSentiment,
			Reach:      defaultNewsReach,
			Engagement: engagement,
			Entity:     keyword,
			URL:        probeString(n, "link"),
		})
	}
	return posts
}

// titleChecksum disambiguates article ids when positions collide across
// searches. A 16-bit character sum is plenty for that.
func titleChecksum(title string) int {
	sum := 0
	for _, r := range title {
		sum += int(r)
	}
	return sum & 0xffff
}
