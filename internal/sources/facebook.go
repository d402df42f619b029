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
	defaultFacebookURL  = "https://facebook-scraper3.p.rapidapi.com/search/posts"
	defaultFacebookHost = "facebook-scraper3.p.rapidapi.com"
	maxFacebookPosts    = 10

	defaultFacebookReach      = 60000
	defaultFacebookEngagement = 1500
)

// FacebookClient fetches public posts through the facebook-scraper3
// RapidAPI aggregator.
type FacebookClient struct {
	apiKey string
	apiURL string
	host   string
	client *http.Client
	logger logging.Logger
}

func NewFacebookClient(apiKey, apiURL, host string, logger logging.Logger) *FacebookClient {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultFacebookURL
	}
	if strings.TrimSpace(host) == "" {
		host = defaultFacebookHost
	}
	return &FacebookClient{
		apiKey: apiKey,
		apiURL: apiURL,
		host:   host,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (c *FacebookClient) Name() string { return "Facebook" }

func (c *FacebookClient) Fetch(ctx context.Context, keyword string) ([]models.Post, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		c.logger.Warn("Facebook: RapidAPI key not configured")
		return nil, nil
	}

	endpoint, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse facebook url: %w", err)
	}
	q := endpoint.Query()
	q.Set("query", keyword)
	q.Set("limit", fmt.Sprintf("%d", maxFacebookPosts))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create facebook request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("Facebook request failed")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Warn("Facebook returned non-200")
		return nil, nil
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WithError(err).Warn("Facebook: malformed response payload")
		return nil, nil
	}

	posts := c.extractPosts(payload, keyword)
	c.logger.WithFields(logging.Fields{"keyword": keyword, "count": len(posts)}).Info("Facebook fetch complete")
	return posts, nil
}

func (c *FacebookClient) extractPosts(payload map[string]any, keyword string) []models.Post {
	raw := probeArray(payload, "results", "result", "data")
	if len(raw) == 0 {
		c.logger.Warn("Facebook: empty results")
		return nil
	}
	now := time.Now()

	var posts []models.Post
	for i, item := range raw {
		if len(posts) >= maxFacebookPosts {
			break
		}

		p := asObject(item)
		if p == nil {
			continue
		}

		postID := probeString(p, "post_id", "id")
		if postID == "" {
			postID = fmt.Sprintf("%d", i)
		}

		author := facebookAuthor(p)

		text := strings.TrimSpace(probeString(p, "message", "text", "story"))
		if text == "" {
			c.logger.WithField("index", i).Warn("Facebook post skipped - empty text")
			continue
		}

		reactions := probeInt(p, "reactions.summary.total_count", "reactions.count", "reactions")
		likes := probeInt(p, "likes.summary.total_count", "likes.count", "likes")
		shares := probeInt(p, "shares.count", "shares.summary.total_count", "shares")
		comments := probeInt(p, "comments.summary.total_count", "comments.count", "comments")

		base := reactions
		if base == 0 {
			base = likes
		}
		engagement := base + shares + comments
		if engagement == 0 {
			engagement = base
		}
		if engagement == 0 {
			engagement = defaultFacebookEngagement
		}

		posts = append(posts, models.Post{
			ID:         "fb_" + postID,
			Platform:   models.PlatformFacebook,
			Author:     author,
			Handle:     author,
			Timestamp:  models.FormatRelativeTimestamp(facebookTimestamp(p, now), now),
			Content:    text,
			RiskScore:  models.PlaceholderRiskScore,
			Sentiment:  models.PlaceholderSentiment,
			Reach:      defaultFacebookReach,
			Engagement: engagement,
			Entity:     keyword,
			URL:        probeString(p, "permalink_url", "url"),
			Hashtags:   ExtractHashtags(text),
			Media:      facebookMedia(p),
		})
	}
	return posts
}

func facebookAuthor(p map[string]any) string {
	for _, path := range []string{"from", "author", "user"} {
		v := dig(p, path)
		if s := asString(v); s != "" {
			return s
		}
		if name := probeString(v, "name", "username", "id"); name != "" {
			return name
		}
	}
	return "Unknown"
}

func facebookTimestamp(p map[string]any, now time.Time) time.Time {
	for _, path := range []string{"created_time", "created_at", "timestamp"} {
		switch v := dig(p, path).(type) {
		case float64:
			return time.Unix(int64(v), 0)
		case string:
			if parsed, err := time.Parse(time.RFC3339, v); err == nil {
				return parsed
			}
		}
	}
	return now
}

func facebookMedia(p map[string]any) []models.MediaItem {
	var media []models.MediaItem

	for _, att := range asArray(dig(p, "attachments")) {
		if src := probeString(att, "media.image.src"); src != "" {
			media = append(media, models.MediaItem{URL: src, Type: models.MediaImage, ThumbnailURL: src})
			continue
		}
		if src := probeString(att, "media.source"); src != "" {
			thumb := probeString(att, "media.preview.src")
			if thumb == "" {
				thumb = src
			}
			media = append(media, models.MediaItem{URL: src, Type: models.MediaVideo, ThumbnailURL: thumb})
			continue
		}
		if target := probeString(att, "target.url"); target != "" && imageURLRe.MatchString(target) {
			media = append(media, models.MediaItem{URL: target, Type: models.MediaImage, ThumbnailURL: target})
		}
	}

	// full_picture is the scraper's own preview; skip it when an
	// attachment already carries the same URL.
	if pic := probeString(p, "full_picture"); pic != "" {
		duplicate := false
		for _, m := range media {
			if m.URL == pic {
				duplicate = true
				break
			}
		}
		if !duplicate {
			media = append(media, models.MediaItem{URL: pic, Type: models.MediaImage, ThumbnailURL: pic})
		}
	}

	return media
}
