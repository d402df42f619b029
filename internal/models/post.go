package models

// Platform identifies the upstream source of a post.
type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformReddit   Platform = "reddit"
	PlatformFacebook Platform = "facebook"
	PlatformNews     Platform = "news"
)

// Sentiment is derived from the final risk score, never set independently.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// MediaType classifies an attached media item.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaGIF   MediaType = "gif"
)

// MediaItem is one media attachment extracted from an upstream payload.
type MediaItem struct {
	URL          string    `json:"url"`
	Type         MediaType `json:"type"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
}

// Post is the canonical record every source adapter produces. IDs are
// prefixed per source (tw_, reddit_, news_, fb_) so posts from different
// platforms never collide within one run.
//
// Timestamp is a human-readable relative string ("2 hours ago") computed
// at fetch time; storage repairs it back into an absolute instant.
// RiskScore and Sentiment hold neutral placeholders until the scoring
// phase overwrites them.
type Post struct {
	ID         string      `json:"id"`
	Platform   Platform    `json:"platform"`
	Author     string      `json:"author"`
	Handle     string      `json:"handle"`
	Timestamp  string      `json:"timestamp"`
	Content    string      `json:"content"`
	RiskScore  int         `json:"riskScore"`
	Sentiment  Sentiment   `json:"sentiment"`
	Badges     []string    `json:"badges"`
	Reach      int         `json:"reach"`
	Engagement int         `json:"engagement"`
	Entity     string      `json:"entity"`
	URL        string      `json:"url,omitempty"`
	Hashtags   []string    `json:"hashtags,omitempty"`
	Media      []MediaItem `json:"media,omitempty"`
}

// EvidenceResult is one corroborating source found for a high-risk post.
// Transient: it only gains identity once persisted against a post id.
type EvidenceResult struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Snippet   string `json:"snippet,omitempty"`
	TextBlock string `json:"text_block,omitempty"`
}

// PlaceholderRiskScore and PlaceholderSentiment are the adapter-local
// defaults assigned before real scoring runs. Fixed sentinels, not random:
// the orchestrator always overwrites them.
const (
	PlaceholderRiskScore = 5
	PlaceholderSentiment = SentimentNeutral
)
