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
	defaultTwitterURL  = "https://twitter241.p.rapidapi.com/search"
	defaultTwitterHost = "twitter241.p.rapidapi.com"
	maxTwitterPosts    = 20

	// Documented fallbacks when the payload carries no usable metrics.
	defaultTwitterReach      = 50000
	defaultTwitterEngagement = 1000
)

// TwitterClient fetches tweets through the twitter241 RapidAPI aggregator.
type TwitterClient struct {
	apiKey string
	apiURL string
	client *http.Client
	logger logging.Logger
}

func NewTwitterClient(apiKey, apiURL string, logger logging.Logger) *TwitterClient {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultTwitterURL
	}
	return &TwitterClient{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (c *TwitterClient) Name() string { return "Twitter" }

func (c *TwitterClient) Fetch(ctx context.Context, keyword string) ([]models.Post, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		c.logger.Warn("Twitter: RapidAPI key not configured")
		return nil, nil
	}

	endpoint, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse twitter url: %w", err)
	}
	q := endpoint.Query()
	q.Set("type", "Top")
	q.Set("count", fmt.Sprintf("%d", maxTwitterPosts))
	q.Set("query", keyword)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create twitter request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", defaultTwitterHost)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("Twitter request failed")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Warn("Twitter returned non-200")
		return nil, nil
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WithError(err).Warn("Twitter: malformed response payload")
		return nil, nil
	}

	posts := c.extractPosts(payload, keyword)
	c.logger.WithFields(logging.Fields{"keyword": keyword, "count": len(posts)}).Info("Twitter fetch complete")
	return posts, nil
}

func (c *TwitterClient) extractPosts(payload map[string]any, keyword string) []models.Post {
	entries := timelineEntries(payload)
	now := time.Now()

	var posts []models.Post
	for i, entry := range entries {
		if len(posts) >= maxTwitterPosts {
			break
		}

		tweet := asObject(dig(entry, "content.itemContent.tweet_results.result"))
		if tweet == nil {
			tweet = asObject(dig(entry, "content.itemContent.tweet_results.tweet"))
		}
		if tweet == nil {
			c.logger.WithField("index", i).Warn("Twitter: could not extract tweet from entry")
			continue
		}

		text := probeString(tweet, "legacy.full_text", "legacy.text")
		if strings.TrimSpace(text) == "" {
			continue
		}

		user := asObject(dig(tweet, "core.user_results.result"))
		author := probeString(user,
			"core.name",
			"legacy.name",
			"name",
			"legacy.display_name",
			"display_name",
		)
		username := probeString(user,
			"core.screen_name",
			"legacy.screen_name",
			"screen_name",
			"legacy.username",
			"username",
		)
		if author == "" {
			author = username
		}
		if author == "" {
			author = "Unknown"
		}

		tweetID := probeString(tweet, "rest_id")
		if tweetID == "" {
			tweetID = fmt.Sprintf("%d", i)
		}

		timestamp := now
		if created := probeString(tweet, "legacy.created_at"); created != "" {
			if parsed, err := time.Parse(time.RubyDate, created); err == nil {
				timestamp = parsed
			}
		}

		favorites := probeInt(tweet, "legacy.favorite_count", "legacy.favoriteCount")
		retweets := probeInt(tweet, "legacy.retweet_count", "legacy.retweetCount")
		replies := probeInt(tweet, "legacy.reply_count", "legacy.replyCount")
		quotes := probeInt(tweet, "legacy.quote_count", "legacy.quoteCount")
		views := probeInt(tweet, "legacy.view_count", "legacy.views.count", "views.count")
		followers := probeInt(user,
			"legacy.followers_count",
			"legacy.followersCount",
			"core.followers_count",
		)

		totalEngagement := favorites + retweets + replies + quotes
		engagement := totalEngagement
		if engagement == 0 {
			engagement = favorites + retweets
		}
		if engagement == 0 {
			engagement = defaultTwitterEngagement
		}
		reach := views
		if reach == 0 {
			reach = followers
		}
		if reach == 0 {
			reach = defaultTwitterReach
		}

		handle := "Unknown"
		postURL := ""
		if username != "" {
			handle = "@" + username
			postURL = fmt.Sprintf("https://twitter.com/%s/status/%s", username, tweetID)
		}

		var badges []string
		if probeBool(user, "core.verified", "legacy.verified", "verified") {
			badges = []string{"Verified"}
		}

		posts = append(posts, models.Post{
			ID:         "tw_" + tweetID,
			Platform:   models.PlatformTwitter,
			Author:     author,
			Handle:     handle,
			Timestamp:  models.FormatRelativeTimestamp(timestamp, now),
			Content:    text,
			RiskScore:  models.PlaceholderRiskScore,
			Sentiment:  models.PlaceholderSentiment,
			Badges:     badges,
			Reach:      reach,
			Engagement: engagement,
			Entity:     keyword,
			URL:        postURL,
			Hashtags:   twitterHashtags(tweet),
			Media:      twitterMedia(tweet),
		})
	}
	return posts
}

// timelineEntries unwraps the timeline envelope down to the individual
// tweet entries, skipping cursors and module entries.
func timelineEntries(payload map[string]any) []any {
	var entries []any
	for _, instr := range asArray(dig(payload, "result.timeline.instructions")) {
		if asString(dig(instr, "type")) != "TimelineAddEntries" {
			continue
		}
		for _, entry := range asArray(dig(instr, "entries")) {
			if asString(dig(entry, "content.entryType")) == "TimelineTimelineItem" {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

// twitterHashtags reads the structured entity list; Twitter is the only
// source that provides one.
func twitterHashtags(tweet map[string]any) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, h := range asArray(dig(tweet, "legacy.entities.hashtags")) {
		tag := probeString(h, "text", "tag")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}

func twitterMedia(tweet map[string]any) []models.MediaItem {
	mediaData := probeArray(tweet, "legacy.extended_entities.media", "legacy.entities.media")
	var media []models.MediaItem
	for _, m := range mediaData {
		mediaURL := probeString(m, "media_url_https", "media_url")
		if mediaURL == "" {
			continue
		}
		mediaType := models.MediaImage
		switch asString(dig(m, "type")) {
		case "video", "animated_gif":
			mediaType = models.MediaVideo
		}
		media = append(media, models.MediaItem{
			URL:          mediaURL,
			Type:         mediaType,
			ThumbnailURL: mediaURL,
		})
	}
	return media
}
