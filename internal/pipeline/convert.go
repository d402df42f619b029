package pipeline

import (
	"strings"
	"time"

	"crowsnest/internal/models"
	"crowsnest/internal/store"
)

// toPostRow flattens a post into its persisted shape. The display
// timestamp is relative ("2 hours ago"), so it is converted back to an
// absolute time; unparsable values repair to now.
func toPostRow(post models.Post, entity string, now time.Time) store.PostRow {
	return store.PostRow{
		ID:         post.ID,
		Platform:   string(post.Platform),
		Entity:     entity,
		Author:     post.Author,
		Handle:     strings.TrimPrefix(post.Handle, "@"),
		FullText:   post.Content,
		URL:        post.URL,
		Score:      post.RiskScore,
		Sentiment:  string(post.Sentiment),
		Reach:      post.Reach,
		Engagement: post.Engagement,
		Badges:     post.Badges,
		CreatedAt:  models.ParseRelativeTimestamp(post.Timestamp, now),
	}
}

func toEntityRows(post models.Post) []store.EntityRow {
	rows := make([]store.EntityRow, 0, len(post.Hashtags))
	for _, tag := range post.Hashtags {
		rows = append(rows, store.EntityRow{
			PostID:     post.ID,
			EntityType: "hashtag",
			Text:       tag,
		})
	}
	return rows
}

func toMediaRows(post models.Post) []store.MediaRow {
	rows := make([]store.MediaRow, 0, len(post.Media))
	for _, m := range post.Media {
		rows = append(rows, store.MediaRow{
			PostID:       post.ID,
			MediaType:    string(m.Type),
			URL:          m.URL,
			ThumbnailURL: m.ThumbnailURL,
		})
	}
	return rows
}
