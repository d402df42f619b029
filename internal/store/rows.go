package store

import "time"

// PostRow is the persisted shape of a scored post.
type PostRow struct {
	ID         string
	Platform   string
	Entity     string
	Author     string
	Handle     string
	FullText   string
	URL        string
	Score      int
	Sentiment  string
	Reach      int
	Engagement int
	Badges     []string
	CreatedAt  time.Time
}

// EntityRow is one extracted entity (currently hashtags) tied to a post.
type EntityRow struct {
	PostID     string
	EntityType string
	Text       string
}

type MediaRow struct {
	PostID       string
	MediaType    string
	URL          string
	ThumbnailURL string
}

// EvidenceRow is one stored evidence item for a high-risk post. Data
// carries the raw result as JSONB for fields the columns do not cover.
type EvidenceRow struct {
	PostID  string
	Source  string
	Title   string
	URL     string
	Snippet string
	Data    any
}

type AdminResponseRow struct {
	PostID       string
	ResponseText string
	GeneratedBy  string
	ModelUsed    string
}

// PlatformStat is one platform's slice of the dashboard breakdown.
type PlatformStat struct {
	Platform string `json:"platform"`
	Mentions int    `json:"mentions"`
	Score    int    `json:"score"`
}

type RiskBuckets struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type MentionPoint struct {
	Date     string `json:"date"`
	Mentions int    `json:"mentions"`
}

type TopicSentiment struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

type TopTopic struct {
	Name      string         `json:"name"`
	Volume    int            `json:"volume"`
	RiskScore float64        `json:"riskScore"`
	Sentiment TopicSentiment `json:"sentiment"`
}

// DashboardData is the aggregated view served to the dashboard page.
type DashboardData struct {
	TotalMentions    int            `json:"totalMentions"`
	PlatformData     []PlatformStat `json:"platformData"`
	RiskData         RiskBuckets    `json:"riskData"`
	MentionsOverTime []MentionPoint `json:"mentionsOverTime"`
	AverageScore     float64        `json:"averageScore"`
	TopTopics        []TopTopic     `json:"topTopics"`
}
