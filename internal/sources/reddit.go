package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"crowsnest/internal/models"
	"crowsnest/pkg/logging"
)

const (
	defaultRedditURL  = "https://reddit34.p.rapidapi.com/getSearchPosts"
	defaultRedditHost = "reddit34.p.rapidapi.com"
	maxRedditPosts    = 20

	defaultRedditReach      = 10000
	defaultRedditEngagement = 500
)

var imageURLRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)

// RedditClient fetches posts through the reddit34 RapidAPI aggregator.
type RedditClient struct {
	apiKey string
	apiURL string
	client *http.Client
	logger logging.Logger
}

func NewRedditClient(apiKey, apiURL string, logger logging.Logger) *RedditClient {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultRedditURL
	}
	return &RedditClient{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (c *RedditClient) Name() string { return "Reddit" }

func (c *RedditClient) Fetch(ctx context.Context, keyword string) ([]models.Post, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		c.logger.Warn("Reddit: RapidAPI key not configured")
		return nil, nil
	}

	endpoint, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse reddit url: %w", err)
	}
	q := endpoint.Query()
	q.Set("query", keyword)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create reddit request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", defaultRedditHost)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("Reddit request failed")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		entry := c.logger.WithField("status", resp.StatusCode)
		if resp.StatusCode == http.StatusForbidden {
			entry.Warn("Reddit API subscription required")
		} else {
			entry.Warn("Reddit returned non-200")
		}
		return nil, nil
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WithError(err).Warn("Reddit: malformed response payload")
		return nil, nil
	}

	posts := c.extractPosts(payload, keyword)
	c.logger.WithFields(logging.Fields{"keyword": keyword, "count": len(posts)}).Info("Reddit fetch complete")
	return posts, nil
}

func (c *RedditClient) extractPosts(payload map[string]any, keyword string) []models.Post {
	raw := probeArray(payload, "data.posts", "posts", "results", "data.children")
	now := time.Now()

	var posts []models.Post
	for i, item := range raw {
		if len(posts) >= maxRedditPosts {
			break
		}

		// Listing-style responses wrap each post in a data envelope.
		pData := asObject(dig(item, "data"))
		if pData == nil {
			pData = asObject(item)
		}
		if pData == nil {
			continue
		}

		title := probeString(pData, "title")
		if title == "" {
			title = "(untitled)"
		}
		subreddit := probeString(pData, "subreddit", "subreddit_name_prefixed")
		if subreddit == "" {
			subreddit = "Unknown"
		}

		text := title
		selftext := probeString(pData, "selftext")
		if selftext != "" && selftext != "[deleted]" && selftext != "[removed]" {
			text += " — " + selftext
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		postID := probeString(pData, "id")
		if postID == "" {
			postID = fmt.Sprintf("post_%d", i)
		}

		score := probeInt(pData, "score", "ups", "upvotes")
		comments := probeInt(pData, "num_comments", "comment_count", "numComments")
		subscribers := probeInt(pData, "subreddit_subscribers", "subscribers")

		engagement := score + comments
		if engagement == 0 {
			engagement = score
		}
		if engagement == 0 {
			engagement = defaultRedditEngagement
		}
		reach := subscribers
		if reach == 0 {
			reach = defaultRedditReach
		}

		handle := subreddit
		if !strings.HasPrefix(handle, "r/") {
			handle = "r/" + handle
		}

		posts = append(posts, models.Post{
			ID:         "reddit_" + postID,
			Platform:   models.PlatformReddit,
			Author:     subreddit,
			Handle:     handle,
			Timestamp:  models.FormatRelativeTimestamp(redditTimestamp(pData, now), now),
			Content:    text,
			RiskScore:  models.PlaceholderRiskScore,
			Sentiment:  models.PlaceholderSentiment,
			Reach:      reach,
			Engagement: engagement,
			Entity:     keyword,
			URL:        redditURL(pData, handle, postID),
			Hashtags:   ExtractHashtags(text),
			Media:      redditMedia(pData),
		})
	}
	return posts
}

func redditTimestamp(pData map[string]any, now time.Time) time.Time {
	created := dig(pData, "created_utc")
	if created == nil {
		created = dig(pData, "createdAt")
	}
	if created == nil {
		created = dig(pData, "created")
	}
	switch v := created.(type) {
	case float64:
		return time.Unix(int64(v), 0)
	case string:
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return parsed
		}
	}
	return now
}

func redditURL(pData map[string]any, handle, postID string) string {
	if u := probeString(pData, "url", "full_link"); u != "" {
		return u
	}
	if permalink := probeString(pData, "permalink"); permalink != "" {
		return "https://www.reddit.com" + permalink
	}
	return fmt.Sprintf("https://www.reddit.com/%s/comments/%s/", handle, postID)
}

func redditMedia(pData map[string]any) []models.MediaItem {
	var media []models.MediaItem

	for _, img := range asArray(dig(pData, "preview.images")) {
		imageURL := probeString(img, "source.url", "url")
		if imageURL == "" {
			continue
		}
		decoded := strings.ReplaceAll(imageURL, "&amp;", "&")
		media = append(media, models.MediaItem{URL: decoded, Type: models.MediaImage, ThumbnailURL: decoded})
	}

	// A direct image link counts as media too.
	if postURL := probeString(pData, "url"); postURL != "" {
		if imageURLRe.MatchString(postURL) || probeString(pData, "post_hint") == "image" {
			media = append(media, models.MediaItem{URL: postURL, Type: models.MediaImage, ThumbnailURL: postURL})
		}
	}

	// Gallery posts keep their images behind media_metadata.
	metadata := asObject(dig(pData, "media_metadata"))
	for _, item := range asArray(dig(pData, "gallery_data.items")) {
		mediaID := probeString(item, "media_id")
		if mediaID == "" || metadata == nil {
			continue
		}
		if u := probeString(metadata[mediaID], "s.u"); u != "" {
			decoded := strings.ReplaceAll(u, "&amp;", "&")
			media = append(media, models.MediaItem{URL: decoded, Type: models.MediaImage, ThumbnailURL: decoded})
		}
	}

	return media
}
